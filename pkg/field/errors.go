package field

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceKeyNotFound is returned when a required list or dict key is absent.
	ErrSourceKeyNotFound = errors.New("source key not found")

	// ErrValueNotASequence is returned when a list field finds a non-list value.
	ErrValueNotASequence = errors.New("value is not a sequence")

	// ErrMissingKey is returned when a required scalar or resource link key is absent.
	ErrMissingKey = errors.New("missing key")

	// ErrValueNotAMapping is returned when a field needs a mapping and gets something else.
	ErrValueNotAMapping = errors.New("value is not a mapping")

	// ErrValueNotAScalar is returned when a scalar field finds a composite value.
	ErrValueNotAScalar = errors.New("value is not a scalar")

	// ErrParentKeyMissing is returned when an embedded field has no predicate
	// of its own and no enclosing key to inherit.
	ErrParentKeyMissing = errors.New("parent key missing")

	// ErrMissingScanContext is returned when a resource id can't be built
	// because the context lacks an account or region.
	ErrMissingScanContext = errors.New("missing scan context")
)

// ParseError describes where in the field tree parsing failed.
// Wraps one of the sentinel errors above; use errors.Is to classify.
type ParseError struct {
	Kind      Kind
	Key       string   // source key of the failing field, empty for embedded fields
	ParentKey string   // enclosing predicate at the point of failure
	Path      []string // keys of the enclosing composite fields, outermost first
	Err       error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if len(e.Path) > 0 {
		b.WriteString(strings.Join(e.Path, "."))
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s field", e.Kind)
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.ParentKey != "" {
		fmt.Fprintf(&b, " (parent %q)", e.ParentKey)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(kind Kind, key string, ctx Context, err error) error {
	return &ParseError{Kind: kind, Key: key, ParentKey: ctx.ParentKey, Err: err}
}

func parseErrf(kind Kind, key string, ctx Context, sentinel error, format string, args ...any) error {
	return parseErr(kind, key, ctx, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

// nest records that err surfaced beneath the composite field at elem.
func nest(err error, elem string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = append([]string{elem}, pe.Path...)
	}
	return err
}
