// Package schema loads resource type declarations from YAML and compiles them
// into field trees.
//
// A schema file lists resource types:
//
//	resource_types:
//	  - name: route-table
//	    id:
//	      key: RouteTableId
//	      arn: {service: ec2, type: route-table}
//	    fields:
//	      - {kind: scalar, key: RouteTableId}
//	      - {kind: resource_link, key: VpcId, target: {service: ec2, type: vpc}}
//	      - kind: list
//	        key: Routes
//	        predicate: route
//	        optional: true
//	        item:
//	          kind: embedded_dict
//	          fields:
//	            - {kind: scalar, key: State, optional: true}
//
// Field kinds are the field package combinator names.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk form of a schema file.
type File struct {
	ResourceTypes []TypeSpec `yaml:"resource_types"`
}

// TypeSpec declares one resource type.
//
// Scope controls the links every resource of the type gets to its scan
// context: "regional" (the default) links to the account and the region,
// "account" to the account only, "global" to neither.
type TypeSpec struct {
	Name   string      `yaml:"name"`
	Scope  string      `yaml:"scope,omitempty"`
	ID     IDSpec      `yaml:"id"`
	Fields []FieldSpec `yaml:"fields"`
}

// IDSpec says where a resource's id comes from. Without ARN the value at Key
// is used verbatim.
type IDSpec struct {
	Key string   `yaml:"key"`
	ARN *ARNSpec `yaml:"arn,omitempty"`
}

// ARNSpec describes how an ARN is built for a resource type.
type ARNSpec struct {
	Partition  string `yaml:"partition,omitempty"`
	Service    string `yaml:"service"`
	Type       string `yaml:"type"`
	Global     bool   `yaml:"global,omitempty"`
	Regionless bool   `yaml:"regionless,omitempty"`
}

// FieldSpec declares one field. Which attributes apply depends on Kind.
type FieldSpec struct {
	Kind        string      `yaml:"kind"`
	Key         string      `yaml:"key,omitempty"`
	Predicate   string      `yaml:"predicate,omitempty"`
	Optional    bool        `yaml:"optional,omitempty"`
	AllowScalar bool        `yaml:"allow_scalar,omitempty"`
	Default     any         `yaml:"default,omitempty"`
	ValueIsID   bool        `yaml:"value_is_id,omitempty"`
	Target      *ARNSpec    `yaml:"target,omitempty"`
	Item        *FieldSpec  `yaml:"item,omitempty"`
	Fields      []FieldSpec `yaml:"fields,omitempty"`
}

// LoadFile reads and parses a schema file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses schema YAML. Unknown attributes are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	return &f, nil
}

// Marshal serialises a schema file to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}
