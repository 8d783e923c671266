// Package ez registers typed gin actions that answer with the response envelope.
package ez

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/domain"
	mdw "fountain-monitor/internal/transport/http/middleware"
	resp "fountain-monitor/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

type Binder string

const (
	BindJSON  Binder = "json"  // request body
	BindQuery Binder = "query" // ?a=b
	BindURI   Binder = "uri"   // :param segments
	BindNone  Binder = "none"  // handler reads c.Param / c.Query itself
)

// AErr carries the envelope code an action failed with.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromError maps an error from the service layer to an envelope code.
// Unknown errors become 500 with a generic message.
func FromError(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	code := resp.CodeServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrResourceNotFound),
		errors.Is(err, domain.ErrNotFound):
		code = resp.CodeNotFound
	case errors.Is(err, domain.ErrRoleNotAccepted):
		code = resp.CodeForbidden
	case errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrNoDataForPeriod):
		code = resp.CodeBadRequest
	case errors.Is(err, domain.ErrSourceError):
		code = resp.CodeBadGateway
	case errors.Is(err, domain.ErrSourceUnavailable):
		code = resp.CodeUnavailable
	}
	if code == resp.CodeServerError {
		return &AErr{Code: code, Msg: "internal error", Err: err}
	}
	return &AErr{Code: code, Msg: err.Error(), Err: err}
}

// Action describes one endpoint: I is bound from the request, O is the data payload.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool          // requires a verified caller
	Roles   []domain.Role // optional; implies Auth
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction mounts a on e's group.
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth || len(a.Roles) > 0 {
			if c.GetString(mdw.KeyUserID) == "" {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, mdw.CurrentRole(c)) {
				c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			ae := FromError(err)
			if ae.Code >= resp.CodeServerError {
				_ = c.Error(err)
			}
			c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// ParamInt64 parses a path segment as an int64 id.
func ParamInt64(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, BadRequest("invalid " + name + ": " + c.Param(name))
	}
	return v, nil
}

// ParamInt parses a path segment as an int.
func ParamInt(c *gin.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, BadRequest("invalid " + name + ": " + c.Param(name))
	}
	return v, nil
}
