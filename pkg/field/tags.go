package field

import (
	"fmt"

	"github.com/guptam/altimeter/pkg/link"
)

// DefaultTagsKey is the key AWS responses carry tags under.
const DefaultTagsKey = "Tags"

// TagsField reads resource tags.
type TagsField struct {
	key string
}

// Tags reads the tag collection at data["Tags"], either an AWS style
// [{"Key": k, "Value": v}] list or a plain map of strings, and emits one
// TagLink per tag. Missing tags produce no links.
func Tags() *TagsField {
	return &TagsField{key: DefaultTagsKey}
}

// TagsFrom is Tags reading from a different key.
func TagsFrom(key string) *TagsField {
	return &TagsField{key: key}
}

// Parse implements Field.
func (f *TagsField) Parse(data any, ctx Context) ([]link.Link, error) {
	m, ok := asMapping(data)
	if !ok {
		return nil, parseErrf(KindTags, f.key, ctx, ErrValueNotAMapping, "got %T", data)
	}
	v, present := m[f.key]
	if !present || v == nil {
		return nil, nil
	}

	if plain, ok := asMapping(v); ok {
		return f.fromMap(plain, ctx)
	}
	items, ok := asSequence(v)
	if !ok {
		return nil, parseErrf(KindTags, f.key, ctx, ErrValueNotASequence, "got %T", v)
	}
	out := make([]link.Link, 0, len(items))
	for i, item := range items {
		pair, ok := asMapping(item)
		if !ok {
			return nil, nest(parseErrf(KindTags, f.key, ctx, ErrValueNotAMapping, "got %T", item), fmt.Sprintf("%s[%d]", f.key, i))
		}
		key, ok := pair["Key"].(string)
		if !ok {
			return nil, nest(parseErr(KindTags, "Key", ctx, ErrMissingKey), fmt.Sprintf("%s[%d]", f.key, i))
		}
		value, err := tagValue(pair["Value"])
		if err != nil {
			return nil, nest(parseErr(KindTags, "Value", ctx, err), fmt.Sprintf("%s[%d]", f.key, i))
		}
		tag, err := link.NewTag(key, value)
		if err != nil {
			return nil, parseErr(KindTags, f.key, ctx, err)
		}
		out = append(out, tag)
	}
	return out, nil
}

func (f *TagsField) fromMap(m map[string]any, ctx Context) ([]link.Link, error) {
	keys := sortedKeys(m)
	out := make([]link.Link, 0, len(keys))
	for _, key := range keys {
		value, err := tagValue(m[key])
		if err != nil {
			return nil, nest(parseErr(KindTags, key, ctx, err), f.key)
		}
		tag, err := link.NewTag(key, value)
		if err != nil {
			return nil, parseErr(KindTags, f.key, ctx, err)
		}
		out = append(out, tag)
	}
	return out, nil
}

func tagValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	}
	return "", fmt.Errorf("%w: tag value %T", ErrValueNotAScalar, v)
}
