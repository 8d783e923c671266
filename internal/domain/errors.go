package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrRoleNotAccepted   = errors.New("role not accepted")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrNoDataForPeriod   = errors.New("no data for period")
	ErrNotFound          = errors.New("not found")
	ErrSourceUnavailable = errors.New("analysis source unavailable")
	ErrSourceError       = errors.New("analysis source error")
	ErrPersistence       = errors.New("persistence error")

	// ErrEmailTaken is an ErrInvalidParameter.
	ErrEmailTaken = fmt.Errorf("%w: email already exists", ErrInvalidParameter)
)

// SourceError is a non-2xx reply from the analysis source.
type SourceError struct {
	StatusCode int
	Op         string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: status %d", ErrSourceError, e.Op, e.StatusCode)
}

func (e *SourceError) Is(target error) bool { return target == ErrSourceError }
