package service

import (
	"errors"
	"fmt"

	"github.com/pliu/messenger/internal/store"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// storeError maps store sentinels onto the service error kinds and wraps
// anything else as an infrastructure failure.
func storeError(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
