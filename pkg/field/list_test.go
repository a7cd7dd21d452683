package field

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/guptam/altimeter/pkg/link"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))
	return m
}

func simple(pred string, obj any) link.SimpleLink {
	return link.SimpleLink{Pred: pred, Obj: obj}
}

func multi(pred string, links ...link.Link) link.MultiLink {
	if links == nil {
		links = []link.Link{}
	}
	return link.MultiLink{Pred: pred, Obj: links}
}

func people() Field {
	return EmbeddedDict(Scalar("Name"), Scalar("Age"))
}

func TestListField_Strings(t *testing.T) {
	f := List("Animals", EmbeddedScalar())

	links, err := f.Parse(decode(t, `{"Animals": ["cow", "pig", "human"]}`), Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		simple("animals", "cow"),
		simple("animals", "pig"),
		simple("animals", "human"),
	}, links)
}

func TestListField_TypedSlices(t *testing.T) {
	links, err := List("Ports", EmbeddedScalar()).Parse(map[string]any{"Ports": []int64{22, 443}}, Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{simple("ports", int64(22)), simple("ports", int64(443))}, links)

	links, err = AnonymousList("Flags", EmbeddedScalar()).Parse(map[string]any{"Flags": []bool{true}}, Context{ParentKey: "feature"})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{simple("feature", true)}, links)

	_, err = List("Ports", EmbeddedScalar()).Parse(map[string]any{"Ports": 22}, Context{})
	assert.ErrorIs(t, err, ErrValueNotASequence)
}

func TestListField_Dicts(t *testing.T) {
	input := `{"People": [{"Name": "Bob", "Age": 49}, {"Name": "Sue", "Age": 42}]}`

	tests := []struct {
		name string
		opts []Option
		pred string
	}{
		{"normalised key", nil, "people"},
		{"predicate override", []Option{WithPredicate("person")}, "person"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links, err := List("People", people(), tt.opts...).Parse(decode(t, input), Context{})
			require.NoError(t, err)
			assert.Equal(t, []link.Link{
				multi(tt.pred, simple("name", "Bob"), simple("age", int64(49))),
				multi(tt.pred, simple("name", "Sue"), simple("age", int64(42))),
			}, links)
		})
	}
}

func TestListField_MissingSourceKey(t *testing.T) {
	f := List("Stuff", people(), WithPredicate("person"))

	_, err := f.Parse(decode(t, `{"People": []}`), Context{ParentKey: "test_parent"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceKeyNotFound))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Stuff", pe.Key)
	assert.Equal(t, "test_parent", pe.ParentKey)
	assert.Contains(t, err.Error(), "test_parent")
}

func TestListField_NotAList(t *testing.T) {
	f := List("People", people(), WithPredicate("person"))

	_, err := f.Parse(decode(t, `{"People": "foo"}`), Context{ParentKey: "test_parent"})
	assert.ErrorIs(t, err, ErrValueNotASequence)
}

func TestListField_Optional(t *testing.T) {
	f := List("People", EmbeddedScalar(), WithPredicate("person"), Optional())

	links, err := f.Parse(decode(t, `{}`), Context{})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestListField_AllowScalar(t *testing.T) {
	f := List("People", EmbeddedScalar(), WithPredicate("person"), AllowScalar())

	links, err := f.Parse(decode(t, `{"People": "bob"}`), Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{simple("person", "bob")}, links)
}

func TestListField_ItemErrorPath(t *testing.T) {
	f := Dict("Biota", []Field{List("People", people())})

	_, err := f.Parse(decode(t, `{"Biota": {"People": [{"Name": "Bob", "Age": 1}, {"Age": 2}]}}`), Context{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []string{"Biota", "People[1]"}, pe.Path)
	assert.Equal(t, "Name", pe.Key)
	assert.Equal(t, "people", pe.ParentKey)
}

func TestAnonymousListField_Strings(t *testing.T) {
	f := Dict("Biota", []Field{AnonymousList("Animals", EmbeddedScalar())})

	links, err := f.Parse(decode(t, `{"Biota": {"Animals": ["cow", "pig", "human"], "Plants": ["tree", "fern"]}}`), Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		multi("biota",
			simple("biota", "cow"),
			simple("biota", "pig"),
			simple("biota", "human"),
		),
	}, links)
}

func TestAnonymousListField_Dicts(t *testing.T) {
	f := Dict("Biota", []Field{AnonymousList("People", people())})

	links, err := f.Parse(decode(t, `{"Biota": {"People": [{"Name": "Bob", "Age": 49}, {"Name": "Sue", "Age": 42}]}}`), Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{
		multi("biota",
			multi("biota", simple("name", "Bob"), simple("age", int64(49))),
			multi("biota", simple("name", "Sue"), simple("age", int64(42))),
		),
	}, links)
}

func TestAnonymousListField_Errors(t *testing.T) {
	_, err := AnonymousList("Stuff", people()).Parse(decode(t, `{"People": []}`), Context{ParentKey: "test_parent"})
	assert.ErrorIs(t, err, ErrSourceKeyNotFound)

	_, err = AnonymousList("People", people()).Parse(decode(t, `{"People": "foo"}`), Context{ParentKey: "test_parent"})
	assert.ErrorIs(t, err, ErrValueNotASequence)
}

func TestAnonymousListField_Optional(t *testing.T) {
	f := Dict("Biota", []Field{AnonymousList("Animals", EmbeddedScalar(), Optional())})

	links, err := f.Parse(decode(t, `{"Biota": {"Plants": ["tree", "fern"]}}`), Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{multi("biota")}, links)
}

func TestAnonymousListField_AllowScalar(t *testing.T) {
	f := Dict("Biota", []Field{AnonymousList("Plants", EmbeddedScalar(), AllowScalar())})

	links, err := f.Parse(decode(t, `{"Biota": {"Plants": "tree"}}`), Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{multi("biota", simple("biota", "tree"))}, links)
}

func TestAnonymousListField_TopLevelUsesKey(t *testing.T) {
	links, err := AnonymousList("SubnetIds", EmbeddedScalar()).Parse(decode(t, `{"SubnetIds": ["a"]}`), Context{})
	require.NoError(t, err)
	assert.Equal(t, []link.Link{simple("subnet_ids", "a")}, links)
}
