package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/service"
	"fountain-monitor/internal/transport/http/ez"
)

type Users struct {
	users *service.Users
}

func NewUsers(users *service.Users) *Users { return &Users{users: users} }

type updateIn struct {
	ID       string `json:"id"       binding:"required"`
	Name     string `json:"name"     binding:"omitempty,max=64"`
	Email    string `json:"email"    binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
}

func (h *Users) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			id := c.Param("id")
			if err := selfOrManager(c, id); err != nil {
				return nil, err
			}
			return h.users.Get(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[updateIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateIn) (*domain.User, error) {
			id := c.Param("id")
			if err := selfOnly(c, id); err != nil {
				return nil, err
			}
			return h.users.Update(c.Request.Context(), id, service.UpdateInput{
				ID: in.ID, Name: in.Name, Email: in.Email, Password: in.Password,
			})
		},
	})
}

type roleURI struct {
	Role string `uri:"role" binding:"required"`
}

func (h *Users) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.users.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[roleURI, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users/role/:role",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *roleURI) ([]domain.User, error) {
			role, err := domain.ParseRole(in.Role)
			if err != nil {
				return nil, err
			}
			return h.users.ListByRole(c.Request.Context(), role)
		},
	})
}
