package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/transport/http/ez"
)

// Devices passes the upstream device registry through to the back office.
type Devices struct {
	src domain.DeviceSource
}

func NewDevices(src domain.DeviceSource) *Devices { return &Devices{src: src} }

func (h *Devices) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Device]{
		Method: http.MethodGet,
		Path:   "/devices",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Device, error) {
			return nonNil(h.src.ListDevices(c.Request.Context()))
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Device]{
		Method: http.MethodGet,
		Path:   "/devices/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Device, error) {
			id, err := ez.ParamInt64(c, "id")
			if err != nil {
				return nil, err
			}
			return h.src.GetDevice(c.Request.Context(), id)
		},
	})
}
