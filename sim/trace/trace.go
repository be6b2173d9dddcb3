// Package trace defines the contract shared by all trace producers: the
// ordered job sequence they return, the index window limiting it, and the
// errors they report.
package trace

import (
	"fmt"

	"github.com/distsys-helpers/jobtrace/sim"
)

// Producer yields an ordered sequence of job descriptors.
// File readers preserve source order; generators return jobs in creation order.
type Producer[J any] interface {
	Jobs() ([]J, error)
}

// Window is the [From, To) index range over the trace lines of a source.
// When AllowReadingFurther is set, To is ignored and every trace line from
// From onwards is produced.
type Window struct {
	From                int
	To                  int
	AllowReadingFurther bool
}

// NewWindow returns a window covering trace lines [from, to).
func NewWindow(from, to int, allowReadingFurther bool) Window {
	return Window{From: from, To: to, AllowReadingFurther: allowReadingFurther}
}

// Validate checks the window bounds.
func (w Window) Validate() error {
	if w.From < 0 {
		return fmt.Errorf("window start must be non-negative, got %d", w.From)
	}
	if !w.AllowReadingFurther && w.To < w.From {
		return fmt.Errorf("window end %d precedes start %d", w.To, w.From)
	}
	return nil
}

// Contains reports whether the trace line with the given index is produced.
func (w Window) Contains(idx int) bool {
	if idx < w.From {
		return false
	}
	return w.AllowReadingFurther || idx < w.To
}

// Done reports whether no trace line at or after idx can be produced,
// so the source need not be read any further.
func (w Window) Done(idx int) bool {
	return !w.AllowReadingFurther && idx >= w.To
}

func (w Window) String() string {
	if w.AllowReadingFurther {
		return fmt.Sprintf("[%d, EOF)", w.From)
	}
	return fmt.Sprintf("[%d, %d)", w.From, w.To)
}

// CheckFactory verifies that a job factory can be used by a producer.
func CheckFactory[J any](factory sim.Factory[J]) error {
	if factory == nil {
		return ErrNilFactory
	}
	return nil
}
