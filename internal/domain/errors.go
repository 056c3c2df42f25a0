package domain

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConnection           = errors.New("connection error")
)

var connectionPatterns = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
}

// IsConnectionError reports whether err looks like a transient network
// failure, by sentinel or by message pattern.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnection) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range connectionPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// MarkConnection tags transient failures with ErrConnection so callers can
// surface a retry prompt instead of a hard error. Non-transient errors pass
// through unchanged.
func MarkConnection(err error) error {
	if err == nil {
		return nil
	}
	if IsConnectionError(err) && !errors.Is(err, ErrConnection) {
		return errors.Mark(err, ErrConnection)
	}
	return err
}
