package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/core/auth"
	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/service"
	"fountain-monitor/internal/transport/http/ez"
	mdw "fountain-monitor/internal/transport/http/middleware"
)

// Auth serves signup, signin and the caller's own profile.
type Auth struct {
	users *service.Users
	jwt   *auth.JWTer
}

func NewAuth(users *service.Users, j *auth.JWTer) *Auth { return &Auth{users: users, jwt: j} }

func (h *Auth) Priority() int { return 10 }

type signupIn struct {
	Name     string `json:"name"     binding:"omitempty,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role"`
}

type signinIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenOut struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Auth) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	ez.RegisterAction(e, ez.Action[signupIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *signupIn) (tokenOut, error) {
			u, err := h.users.Signup(c.Request.Context(), service.SignupInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
			})
			if err != nil {
				return tokenOut{}, err
			}
			return h.issue(u)
		},
	})

	ez.RegisterAction(e, ez.Action[signinIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/signin",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *signinIn) (tokenOut, error) {
			u, err := h.users.Authenticate(c.Request.Context(), in.Email, in.Password)
			if errors.Is(err, service.ErrInvalidCredentials) {
				return tokenOut{}, ez.Unauthorized("invalid credentials")
			}
			if err != nil {
				return tokenOut{}, err
			}
			return h.issue(u)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})
}

func (h *Auth) issue(u *domain.User) (tokenOut, error) {
	tok, err := h.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return tokenOut{}, ez.Internal("issue token failed", err)
	}
	return tokenOut{Token: tok, User: u}, nil
}
