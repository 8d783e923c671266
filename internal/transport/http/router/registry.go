package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// A module implements either interface, or both.
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// Modules without a Priority mount at 100; lower mounts first.
type prioritizer interface{ Priority() int }

// MountAPI mounts every APIModule among mods on api.
func MountAPI(api *gin.RouterGroup, mods ...any) {
	for _, m := range sorted(mods) {
		if am, ok := m.(APIModule); ok {
			am.MountAPI(api)
		}
	}
}

// MountAdmin mounts every AdminModule among mods on admin.
func MountAdmin(admin *gin.RouterGroup, mods ...any) {
	for _, m := range sorted(mods) {
		if am, ok := m.(AdminModule); ok {
			am.MountAdmin(admin)
		}
	}
}

func sorted(mods []any) []any {
	out := append([]any(nil), mods...)
	sort.SliceStable(out, func(i, j int) bool {
		return priorityOf(out[i]) < priorityOf(out[j])
	})
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
