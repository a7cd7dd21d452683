package resource

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/guptam/altimeter/pkg/link"
)

// Keys of the persisted resource mapping.
const (
	KeyResourceID   = "resource_id"
	KeyResourceType = "resource_type"
	KeyLinks        = "links"
)

// ToMap returns the persisted representation of r.
func (r Resource) ToMap() map[string]any {
	return map[string]any{
		KeyResourceID:   r.ID,
		KeyResourceType: r.Type,
		KeyLinks:        link.ToMaps(r.Links),
	}
}

// FromMap reconstructs a resource from its persisted representation.
func FromMap(m map[string]any) (Resource, error) {
	id, _ := m[KeyResourceID].(string)
	typ, _ := m[KeyResourceType].(string)

	var links []link.Link
	switch raw := m[KeyLinks].(type) {
	case nil:
	case []any:
		parsed, err := link.FromMaps(raw)
		if err != nil {
			return Resource{}, fmt.Errorf("resource %s: %w", id, err)
		}
		links = parsed
	default:
		return Resource{}, fmt.Errorf("%w: %s: links must be a list, got %T", ErrInvalidResource, id, raw)
	}
	return New(id, typ, links)
}

// MarshalJSON implements json.Marshaler.
func (r Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler. Numbers inside links are
// decoded exactly.
func (r *Resource) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
