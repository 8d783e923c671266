package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/service"
	"fountain-monitor/internal/transport/http/ez"
)

// Favorites mounts the ledger once per category:
//
//	/users/:id/favorites/fountains/...
//	/users/:id/favorites/analyses/...
type Favorites struct {
	fav *service.Favorites
}

func NewFavorites(fav *service.Favorites) *Favorites { return &Favorites{fav: fav} }

var favoriteSegments = []struct {
	segment  string
	category domain.Category
}{
	{"fountains", domain.CategoryFountain},
	{"analyses", domain.CategoryAnalysis},
}

type containsOut struct {
	ID       int64 `json:"id"`
	Favorite bool  `json:"favorite"`
}

func (h *Favorites) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)
	for _, s := range favoriteSegments {
		h.mount(e, "/users/:id/favorites/"+s.segment, s.category)
	}
}

func (h *Favorites) mount(e ez.EZ, base string, cat domain.Category) {
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Resource]{
		Method: http.MethodGet,
		Path:   base,
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Resource, error) {
			uid := c.Param("id")
			if err := selfOrManager(c, uid); err != nil {
				return nil, err
			}
			return h.fav.List(c.Request.Context(), uid, cat)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Resource]{
		Method: http.MethodGet,
		Path:   base + "/first/:n",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Resource, error) {
			uid := c.Param("id")
			if err := selfOrManager(c, uid); err != nil {
				return nil, err
			}
			n, err := ez.ParamInt(c, "n")
			if err != nil {
				return nil, err
			}
			return h.fav.ListFirst(c.Request.Context(), uid, cat, n)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, containsOut]{
		Method: http.MethodGet,
		Path:   base + "/contains/:rid",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (containsOut, error) {
			uid := c.Param("id")
			if err := selfOrManager(c, uid); err != nil {
				return containsOut{}, err
			}
			rid, err := ez.ParamInt64(c, "rid")
			if err != nil {
				return containsOut{}, err
			}
			ok, err := h.fav.IsFavorite(c.Request.Context(), uid, cat, rid)
			if err != nil {
				return containsOut{}, err
			}
			return containsOut{ID: rid, Favorite: ok}, nil
		},
	})

	mutation := func(method string, op func(*gin.Context, string, int64) (*domain.Resource, error)) {
		ez.RegisterAction(e, ez.Action[struct{}, *domain.Resource]{
			Method: method,
			Path:   base + "/:rid",
			Binder: ez.BindNone,
			Auth:   true,
			Handler: func(c *gin.Context, _ *struct{}) (*domain.Resource, error) {
				uid := c.Param("id")
				if err := selfOnly(c, uid); err != nil {
					return nil, err
				}
				rid, err := ez.ParamInt64(c, "rid")
				if err != nil {
					return nil, err
				}
				return op(c, uid, rid)
			},
		})
	}
	mutation(http.MethodPost, func(c *gin.Context, uid string, rid int64) (*domain.Resource, error) {
		return h.fav.Add(c.Request.Context(), uid, cat, rid)
	})
	mutation(http.MethodDelete, func(c *gin.Context, uid string, rid int64) (*domain.Resource, error) {
		return h.fav.Remove(c.Request.Context(), uid, cat, rid)
	})
}
