package field

import (
	"sort"

	"github.com/guptam/altimeter/pkg/link"
)

// Schema is the ordered list of top-level fields describing one resource type.
type Schema struct {
	fields []Field
}

// NewSchema creates a schema from fields, applied in order.
func NewSchema(fields ...Field) Schema {
	return Schema{fields: fields}
}

// Fields returns the top-level fields.
func (s Schema) Fields() []Field {
	return s.fields
}

// Parse applies every field to data and concatenates the results.
// A single failing field fails the whole parse.
func (s Schema) Parse(data any, ctx Context) ([]link.Link, error) {
	m, ok := asMapping(data)
	if !ok {
		return nil, &ParseError{Kind: "schema", ParentKey: ctx.ParentKey, Err: ErrValueNotAMapping}
	}
	links, err := parseAll(s.fields, m, ctx)
	if err != nil {
		return nil, err
	}
	return links, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
