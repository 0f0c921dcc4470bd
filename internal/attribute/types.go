// Package attribute holds the question attribute vocabulary: which
// attribute names each question type accepts, their defaults and value
// constraints, and whether a name carries one value for all languages or
// one value per language.
package attribute

import (
	"fmt"
	"strings"
)

// PrimitiveType constrains the values an attribute accepts.
type PrimitiveType int

const (
	Switch PrimitiveType = iota
	Integer
	SingleSelect
	Text
	FreeText
)

func (p PrimitiveType) String() string {
	switch p {
	case Switch:
		return "switch"
	case Integer:
		return "integer"
	case SingleSelect:
		return "singleselect"
	case Text:
		return "text"
	case FreeText:
		return "textarea"
	}
	return fmt.Sprintf("PrimitiveType(%d)", int(p))
}

// Descriptor describes one attribute of a question type.
type Descriptor struct {
	Name     string
	Default  string
	Type     PrimitiveType
	Options  []string
	Min, Max *int
	Category string
	Help     string
}

// Value is an attribute value as decoded from a spreadsheet cell.
// Composite marks JSON arrays or objects, kept verbatim in Text.
type Value struct {
	Text      string
	Composite bool
}

// Scalar wraps a plain string value.
func Scalar(s string) Value {
	return Value{Text: s}
}

// IsEmpty reports whether the value is an explicit empty scalar.
func (v Value) IsEmpty() bool {
	return !v.Composite && v.Text == ""
}

// ValidationError reports why a value does not satisfy its descriptor.
type ValidationError struct {
	Name   string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("attribute %q: value %q %s", e.Name, e.Value, e.Reason)
}

func intPtr(i int) *int { return &i }

func optionList(opts []string) string {
	return strings.Join(opts, ", ")
}
