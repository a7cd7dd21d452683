package rdfgraph

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/knakk/rdf"
)

const (
	rdfBase = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xsdBase = "http://www.w3.org/2001/XMLSchema#"
)

var (
	RDFType               = mustIRI(rdfBase + "type")
	XSDString             = mustIRI(xsdBase + "string")
	XSDBoolean            = mustIRI(xsdBase + "boolean")
	XSDInteger            = mustIRI(xsdBase + "integer")
	XSDNonNegativeInteger = mustIRI(xsdBase + "nonNegativeInteger")
	XSDDouble             = mustIRI(xsdBase + "double")
	XSDDateTime           = mustIRI(xsdBase + "dateTime")
)

// ErrUnsupportedLiteral is returned for values that have no literal form.
var ErrUnsupportedLiteral = errors.New("unsupported literal value")

// Namespace is the IRI prefix every predicate and class is minted under.
type Namespace string

// IRI returns the namespace-qualified IRI for name.
func (ns Namespace) IRI(name string) (rdf.IRI, error) {
	iri, err := rdf.NewIRI(string(ns) + name)
	if err != nil {
		return rdf.IRI{}, fmt.Errorf("invalid name %q in namespace %s: %w", name, ns, err)
	}
	return iri, nil
}

// Validate reports whether the namespace can mint IRIs at all.
func (ns Namespace) Validate() error {
	if ns == "" {
		return errors.New("namespace must not be empty")
	}
	_, err := rdf.NewIRI(string(ns))
	return err
}

// maxInt32 is the largest integer written as xsd:integer; larger values are
// tagged xsd:nonNegativeInteger so consumers reading 32-bit ints don't overflow.
const maxInt32 = math.MaxInt32

// NewLiteral builds a typed literal for a scalar value.
func NewLiteral(v any) (rdf.Literal, error) {
	switch val := v.(type) {
	case string:
		return rdf.NewTypedLiteral(val, XSDString), nil
	case bool:
		return rdf.NewTypedLiteral(strconv.FormatBool(val), XSDBoolean), nil
	case int:
		return intLiteral(big.NewInt(int64(val))), nil
	case int32:
		return intLiteral(big.NewInt(int64(val))), nil
	case int64:
		return intLiteral(big.NewInt(val)), nil
	case uint64:
		return intLiteral(new(big.Int).SetUint64(val)), nil
	case *big.Int:
		if val == nil {
			break
		}
		return intLiteral(val), nil
	case float64:
		return rdf.NewTypedLiteral(strconv.FormatFloat(val, 'g', -1, 64), XSDDouble), nil
	case time.Time:
		return rdf.NewTypedLiteral(val.Format(time.RFC3339Nano), XSDDateTime), nil
	}
	return rdf.Literal{}, fmt.Errorf("%w: %T", ErrUnsupportedLiteral, v)
}

func intLiteral(n *big.Int) rdf.Literal {
	if n.Cmp(big.NewInt(maxInt32)) > 0 {
		return rdf.NewTypedLiteral(n.String(), XSDNonNegativeInteger)
	}
	return rdf.NewTypedLiteral(n.String(), XSDInteger)
}

func mustIRI(s string) rdf.IRI {
	iri, err := rdf.NewIRI(s)
	if err != nil {
		panic(err)
	}
	return iri
}
