// Public domain.

package pipeline

import (
	"errors"
	"fmt"

	"github.com/soniakeys/rmblos/internal/match"
	"github.com/soniakeys/rmblos/internal/refsel"
	"github.com/soniakeys/rmblos/internal/stability"
)

// Kind classifies fatal pipeline errors.
type Kind int

const (
	// too few points survive a stage for the method to apply
	InsufficientData Kind = iota + 1
	// the configuration admits no result
	DegenerateConfig
)

func (k Kind) String() string {
	switch k {
	case InsufficientData:
		return "insufficient data"
	case DegenerateConfig:
		return "degenerate configuration"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a fatal condition of a stage.  Detail names the settings in
// effect.
type Error struct {
	Kind   Kind
	Stage  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	s := e.Stage + ": " + e.Kind.String()
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// classify wraps err as an *Error if it carries a known sentinel.
func classify(stage, detail string, err error) error {
	var k Kind
	switch {
	case errors.Is(err, match.ErrInsufficientData),
		errors.Is(err, refsel.ErrNoReference):
		k = InsufficientData
	case errors.Is(err, stability.ErrDegenerateConfig):
		k = DegenerateConfig
	default:
		return fmt.Errorf("%s: %w", stage, err)
	}
	return &Error{Kind: k, Stage: stage, Detail: detail, Err: err}
}
