// Package handler exposes the services as gin modules mounted by the router.
package handler

import (
	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/domain"
	"fountain-monitor/internal/transport/http/ez"
	mdw "fountain-monitor/internal/transport/http/middleware"
)

// selfOrManager lets callers read their own data; Managers may read anyone's.
func selfOrManager(c *gin.Context, userID string) error {
	if c.GetString(mdw.KeyUserID) == userID || mdw.CurrentRole(c) == domain.RoleManager {
		return nil
	}
	return ez.Forbidden("cannot access another user's data")
}

func selfOnly(c *gin.Context, userID string) error {
	if c.GetString(mdw.KeyUserID) != userID {
		return ez.Forbidden("cannot modify another user's data")
	}
	return nil
}
