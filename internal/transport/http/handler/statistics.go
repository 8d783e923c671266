package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/service"
	"fountain-monitor/internal/transport/http/ez"
	resp "fountain-monitor/internal/transport/http/response"
)

type Statistics struct {
	stats *service.Statistics
}

func NewStatistics(stats *service.Statistics) *Statistics { return &Statistics{stats: stats} }

// createQ selects the period: today by default, a given date, or every
// analysis ever taken with scope=all.
type createQ struct {
	Date  string `form:"date"`
	Scope string `form:"scope" binding:"omitempty,oneof=day all"`
}

type pageQ struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=20"`
}

func (h *Statistics) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	h.mountCreate(e, domain.RoleManager, domain.RoleTester)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Statistics]{
		Method: http.MethodGet,
		Path:   "/statistics/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Statistics, error) {
			id, err := ez.ParamInt64(c, "id")
			if err != nil {
				return nil, err
			}
			return h.stats.Get(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Statistics]{
		Method: http.MethodGet,
		Path:   "/statistics/month/:month",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Statistics, error) {
			m, err := ez.ParamInt(c, "month")
			if err != nil {
				return nil, err
			}
			return nonNil(h.stats.Month(c.Request.Context(), m))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Statistics]{
		Method: http.MethodGet,
		Path:   "/statistics/year/:year",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Statistics, error) {
			y, err := ez.ParamInt(c, "year")
			if err != nil {
				return nil, err
			}
			return nonNil(h.stats.Year(c.Request.Context(), y))
		},
	})
}

func (h *Statistics) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	h.mountCreate(e)

	ez.RegisterAction(e, ez.Action[pageQ, resp.Page[domain.Statistics]]{
		Method: http.MethodGet,
		Path:   "/statistics",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQ) (resp.Page[domain.Statistics], error) {
			items, total, err := h.stats.List(c.Request.Context(), in.Offset, in.Limit)
			if err != nil {
				return resp.Page[domain.Statistics]{}, err
			}
			return resp.Page[domain.Statistics]{Total: total, Items: items}, nil
		},
	})
}

func (h *Statistics) mountCreate(e ez.EZ, roles ...domain.Role) {
	ez.RegisterAction(e, ez.Action[createQ, *domain.Statistics]{
		Method: http.MethodPost,
		Path:   "/statistics",
		Binder: ez.BindQuery,
		Roles:  roles,
		Handler: func(c *gin.Context, in *createQ) (*domain.Statistics, error) {
			if in.Scope == "all" {
				if in.Date != "" {
					return nil, ez.BadRequest("date and scope=all are exclusive")
				}
				return h.stats.Create(c.Request.Context(), nil)
			}
			day := h.stats.Today()
			if in.Date != "" {
				d, err := time.Parse(time.DateOnly, in.Date)
				if err != nil {
					return nil, ez.BadRequest("date must be YYYY-MM-DD")
				}
				day = d
			}
			return h.stats.Create(c.Request.Context(), &day)
		},
	})
}

func nonNil[T any](items []T, err error) ([]T, error) {
	if err == nil && items == nil {
		items = []T{}
	}
	return items, err
}
