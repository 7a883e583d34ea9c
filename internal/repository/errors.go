package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Failure kinds surfaced by the repository. Callers match with errors.Is;
// the raw store error stays wrapped underneath for logging.
var (
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrNotFound         = errors.New("recipe not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTimeout          = errors.New("store operation timed out")
	ErrUnavailable      = errors.New("service temporarily unavailable")
	ErrNetwork          = errors.New("network error")
)

var taxonomy = []error{
	ErrUnauthenticated,
	ErrNotFound,
	ErrPermissionDenied,
	ErrTimeout,
	ErrUnavailable,
	ErrNetwork,
}

// classify maps an underlying store failure onto the error taxonomy.
// Already-classified errors pass through untouched; everything else is
// reclassified by message on a best-effort basis, or wrapped as-is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range taxonomy {
		if errors.Is(err, kind) {
			return err
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission_denied") || strings.Contains(msg, "permission denied"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "unavailable"):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case strings.Contains(msg, "network") || strings.Contains(msg, "connectivity") ||
		strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	default:
		return fmt.Errorf("store operation failed: %w", err)
	}
}
