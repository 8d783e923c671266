package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fountain-monitor/internal/domain"
)

// isDupKey does not rely on gorm.ErrDuplicatedKey, which only fires with TranslateError.
func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrPersistence, op, err)
}
