package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/transport/http/ez"
)

// Catalog exposes read-only upstream fountains and water analyses to signed-in users.
type Catalog struct {
	fountains domain.FountainSource
	analyses  domain.AnalysisSource
}

func NewCatalog(fountains domain.FountainSource, analyses domain.AnalysisSource) *Catalog {
	return &Catalog{fountains: fountains, analyses: analyses}
}

type searchReq struct {
	Q string `form:"q" binding:"required"`
}

func (h *Catalog) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Fountain]{
		Method: http.MethodGet,
		Path:   "/fountains",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Fountain, error) {
			return nonNil(h.fountains.ListFountains(c.Request.Context()))
		},
	})

	ez.RegisterAction(e, ez.Action[searchReq, []domain.Fountain]{
		Method: http.MethodGet,
		Path:   "/fountains/search",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *searchReq) ([]domain.Fountain, error) {
			return nonNil(h.fountains.SearchFountains(c.Request.Context(), in.Q))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Fountain]{
		Method: http.MethodGet,
		Path:   "/fountains/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Fountain, error) {
			id, err := ez.ParamInt64(c, "id")
			if err != nil {
				return nil, err
			}
			return h.analyses.GetFountain(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.WaterAnalysis]{
		Method: http.MethodGet,
		Path:   "/analyses",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.WaterAnalysis, error) {
			return nonNil(h.analyses.ListWaterAnalyses(c.Request.Context()))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.WaterAnalysis]{
		Method: http.MethodGet,
		Path:   "/analyses/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.WaterAnalysis, error) {
			id, err := ez.ParamInt64(c, "id")
			if err != nil {
				return nil, err
			}
			return h.analyses.GetWaterAnalysis(c.Request.Context(), id)
		},
	})
}
