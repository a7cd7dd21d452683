package link

import (
	"errors"
	"fmt"
)

var (
	// ErrLinkParse indicates a malformed persisted link representation.
	ErrLinkParse = errors.New("link parse error")

	// ErrInvalidLink indicates a link that violates a variant invariant.
	ErrInvalidLink = errors.New("invalid link")

	errNotScalar = errors.New("value is not a scalar")
)

// ParseError names the field of a persisted link that could not be read.
// Wraps ErrLinkParse for errors.Is() compatibility.
type ParseError struct {
	Field string // "link_type", "pred", "obj" or an unexpected key
	Msg   string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", ErrLinkParse.Error(), e.Field, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrLinkParse.Error(), e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrLinkParse }

func invalid(t Type, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidLink, t, msg)
}
