package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPrepared is returned when jobs are requested from a producer
	// whose configuration is incomplete. Completing the configuration and
	// retrying is safe.
	ErrNotPrepared = errors.New("trace producer is not prepared")

	// ErrNilFactory is returned at construction when no job factory is given.
	ErrNilFactory = errors.New("job factory is nil")
)

// GenerationError reports a failed production call. No jobs are returned
// alongside it; the caller may retry.
type GenerationError struct {
	Producer string // producer label, e.g. "Prezi format"
	Line     int    // 1-based source line, 0 when not file based
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Producer, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Producer, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
