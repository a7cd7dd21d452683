package link

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Keys of the persisted link mapping.
const (
	KeyPred     = "pred"
	KeyObj      = "obj"
	KeyLinkType = "link_type"
	KeyDatatype = "datatype"
)

// Datatype markers of simple link objects whose kind JSON does not keep.
const (
	DatatypeDouble   = "double"
	DatatypeDateTime = "dateTime"
)

// ToMap returns the persisted representation of l.
func ToMap(l Link) map[string]any {
	m := map[string]any{
		KeyPred:     l.Predicate(),
		KeyLinkType: string(l.Type()),
	}
	switch v := l.(type) {
	case MultiLink:
		m[KeyObj] = ToMaps(v.Obj)
		return m
	case SimpleLink:
		switch v.Obj.(type) {
		case float64:
			m[KeyDatatype] = DatatypeDouble
		case time.Time:
			m[KeyDatatype] = DatatypeDateTime
		}
	}
	m[KeyObj] = l.Object()
	return m
}

// ToMaps returns the persisted representation of every link in order.
func ToMaps(links []Link) []any {
	out := make([]any, 0, len(links))
	for _, l := range links {
		out = append(out, ToMap(l))
	}
	return out
}

// FromMap reconstructs the variant named by the "link_type" key.
// Failures are reported as *ParseError naming the offending field.
func FromMap(m map[string]any) (Link, error) {
	for k := range m {
		if k != KeyPred && k != KeyObj && k != KeyLinkType && k != KeyDatatype {
			return nil, &ParseError{Field: k, Msg: "unexpected field"}
		}
	}

	rawType, ok := m[KeyLinkType]
	if !ok || rawType == nil {
		return nil, &ParseError{Field: KeyLinkType, Msg: "missing discriminator"}
	}
	typeName, ok := rawType.(string)
	if !ok {
		return nil, &ParseError{Field: KeyLinkType, Msg: fmt.Sprintf("expected string, got %T", rawType)}
	}
	t := Type(typeName)
	if !validType(t) {
		return nil, &ParseError{Field: KeyLinkType, Msg: fmt.Sprintf("unknown link type %q (want one of %s)", typeName, typeList())}
	}

	rawPred, ok := m[KeyPred]
	if !ok || rawPred == nil {
		return nil, &ParseError{Field: KeyPred, Msg: "missing predicate"}
	}
	pred, ok := rawPred.(string)
	if !ok || pred == "" {
		return nil, &ParseError{Field: KeyPred, Msg: fmt.Sprintf("expected non-empty string, got %#v", rawPred)}
	}

	var datatype string
	if raw, ok := m[KeyDatatype]; ok {
		if datatype, ok = raw.(string); !ok {
			return nil, &ParseError{Field: KeyDatatype, Msg: fmt.Sprintf("expected string, got %T", raw)}
		}
		if t != TypeSimple {
			return nil, &ParseError{Field: KeyDatatype, Msg: fmt.Sprintf("not allowed on %s links", t)}
		}
	}

	obj, hasObj := m[KeyObj]
	if obj == nil {
		hasObj = false
	}
	if !hasObj && t != TypeTransientResourceLink {
		return nil, &ParseError{Field: KeyObj, Msg: "missing object"}
	}

	switch t {
	case TypeSimple:
		v, err := typedScalar(obj, datatype)
		if err != nil {
			return nil, err
		}
		return SimpleLink{Pred: pred, Obj: v}, nil
	case TypeMulti:
		items, err := mapList(obj)
		if err != nil {
			return nil, err
		}
		links := make([]Link, 0, len(items))
		for i, item := range items {
			sub, err := FromMap(item)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", pred, i, err)
			}
			links = append(links, sub)
		}
		return MultiLink{Pred: pred, Obj: links}, nil
	case TypeResourceLink:
		id, err := stringObj(obj)
		if err != nil {
			return nil, err
		}
		return ResourceLinkLink{Pred: pred, Obj: id}, nil
	case TypeTransientResourceLink:
		var id string
		if hasObj {
			s, err := stringObj(obj)
			if err != nil {
				return nil, err
			}
			id = s
		}
		return TransientResourceLinkLink{Pred: pred, Obj: id}, nil
	case TypeTag:
		value, err := stringObj(obj)
		if err != nil {
			return nil, err
		}
		return TagLink{Pred: pred, Obj: value}, nil
	}
	return nil, &ParseError{Field: KeyLinkType, Msg: fmt.Sprintf("unknown link type %q", typeName)}
}

// FromMaps reconstructs a list of links.
func FromMaps(items []any) ([]Link, error) {
	links := make([]Link, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("link %d: %w", i, &ParseError{Msg: fmt.Sprintf("expected mapping, got %T", item)})
		}
		l, err := FromMap(m)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		links = append(links, l)
	}
	return links, nil
}

// typedScalar normalises obj and restores the kind named by datatype.
func typedScalar(obj any, datatype string) (any, error) {
	v, err := NormalizeScalar(obj)
	if err != nil {
		return nil, &ParseError{Field: KeyObj, Msg: err.Error()}
	}
	switch datatype {
	case "":
		return v, nil
	case DatatypeDouble:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		case uint64:
			return float64(n), nil
		case *big.Int:
			f, _ := new(big.Float).SetInt(n).Float64()
			return f, nil
		}
	case DatatypeDateTime:
		switch ts := v.(type) {
		case time.Time:
			return ts, nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				return nil, &ParseError{Field: KeyObj, Msg: fmt.Sprintf("invalid %s: %v", datatype, err)}
			}
			return parsed, nil
		}
	default:
		return nil, &ParseError{Field: KeyDatatype, Msg: fmt.Sprintf("unknown datatype %q", datatype)}
	}
	return nil, &ParseError{Field: KeyObj, Msg: fmt.Sprintf("%T cannot carry datatype %s", v, datatype)}
}

func validType(t Type) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

func typeList() string {
	names := make([]string, 0, len(Types))
	for _, t := range Types {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func stringObj(obj any) (string, error) {
	s, ok := obj.(string)
	if !ok {
		return "", &ParseError{Field: KeyObj, Msg: fmt.Sprintf("expected string, got %T", obj)}
	}
	return s, nil
}

func mapList(obj any) ([]map[string]any, error) {
	switch items := obj.(type) {
	case []map[string]any:
		return items, nil
	case []any:
		out := make([]map[string]any, 0, len(items))
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, &ParseError{Field: KeyObj, Msg: fmt.Sprintf("item %d: expected mapping, got %T", i, item)}
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, &ParseError{Field: KeyObj, Msg: fmt.Sprintf("expected list of links, got %T", obj)}
}

// Marshal encodes links as a JSON array of persisted mappings.
func Marshal(links []Link) ([]byte, error) {
	return json.Marshal(ToMaps(links))
}

// Unmarshal decodes a JSON array produced by Marshal. Numbers are decoded
// exactly, so integers beyond float64 precision survive the round trip.
func Unmarshal(data []byte) ([]Link, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode links: %w", err)
	}
	return FromMaps(items)
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders a link tree for debugging.
func Dump(links ...Link) string {
	return dumpConfig.Sdump(links)
}
