package attribute

import (
	"slices"
	"strconv"

	"github.com/pavelanni/surveysheet/internal/model"
)

type typeSet struct {
	order  []string
	byName map[string]Descriptor
}

func (ts *typeSet) put(d Descriptor) {
	if _, exists := ts.byName[d.Name]; !exists {
		ts.order = append(ts.order, d.Name)
	}
	ts.byName[d.Name] = d
}

// Schema is the immutable attribute registry. Build it once with
// NewSchema and share it between engines.
type Schema struct {
	byType    map[model.QuestionType]*typeSet
	universal *typeSet
}

// NewSchema builds the registry from the universal and type-specific
// attribute tables.
func NewSchema() *Schema {
	s := &Schema{
		byType:    make(map[model.QuestionType]*typeSet, len(byType)),
		universal: newTypeSet(universal, nil),
	}
	for _, t := range model.QuestionTypes() {
		s.byType[t] = newTypeSet(universal, byType[t])
	}
	return s
}

func newTypeSet(base, specific []Descriptor) *typeSet {
	ts := &typeSet{byName: make(map[string]Descriptor, len(base)+len(specific))}
	for _, d := range base {
		ts.put(d)
	}
	for _, d := range specific {
		ts.put(d)
	}
	return ts
}

func (s *Schema) set(t model.QuestionType) *typeSet {
	if ts, ok := s.byType[t]; ok {
		return ts
	}
	return s.universal
}

// AttributesFor returns the descriptors valid for a question type, in
// declaration order. Unknown types get the universal subset.
func (s *Schema) AttributesFor(t model.QuestionType) []Descriptor {
	ts := s.set(t)
	out := make([]Descriptor, 0, len(ts.order))
	for _, name := range ts.order {
		out = append(out, ts.byName[name])
	}
	return out
}

// Lookup returns the descriptor of name for type t.
func (s *Schema) Lookup(t model.QuestionType, name string) (Descriptor, bool) {
	d, ok := s.set(t).byName[name]
	return d, ok
}

// IsValid reports whether name is an attribute of type t.
func (s *Schema) IsValid(t model.QuestionType, name string) bool {
	_, ok := s.Lookup(t, name)
	return ok
}

// Position returns the declaration index of name for type t, or -1.
// Encoders use it to write attributes in a stable order.
func (s *Schema) Position(t model.QuestionType, name string) int {
	return slices.Index(s.set(t).order, name)
}

// IsNonDefault reports whether value differs from the schema default and
// so is worth exporting. An empty default equals an empty value. Names
// outside the schema are non-default whenever they are not empty.
func (s *Schema) IsNonDefault(t model.QuestionType, name, value string) bool {
	d, ok := s.Lookup(t, name)
	if !ok {
		return value != ""
	}
	return value != d.Default
}

// Validate checks value against the descriptor of name for type t.
// It returns nil for valid values and a *ValidationError otherwise.
func (s *Schema) Validate(t model.QuestionType, name string, value Value) error {
	d, ok := s.Lookup(t, name)
	if !ok {
		return &ValidationError{Name: name, Value: value.Text, Reason: "is not an attribute of question type " + string(t)}
	}
	return d.Check(value)
}

// Check validates value against the descriptor's primitive type.
func (d Descriptor) Check(value Value) error {
	if value.Composite {
		return &ValidationError{Name: d.Name, Value: value.Text, Reason: "must be a single value, not a list or object"}
	}
	v := value.Text
	switch d.Type {
	case Switch:
		if v != "0" && v != "1" {
			return &ValidationError{Name: d.Name, Value: v, Reason: "must be 0 or 1"}
		}
	case Integer:
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Name: d.Name, Value: v, Reason: "must be a whole number"}
		}
		if d.Min != nil && n < *d.Min {
			return &ValidationError{Name: d.Name, Value: v, Reason: "must be at least " + strconv.Itoa(*d.Min)}
		}
		if d.Max != nil && n > *d.Max {
			return &ValidationError{Name: d.Name, Value: v, Reason: "must be at most " + strconv.Itoa(*d.Max)}
		}
	case SingleSelect:
		if !slices.Contains(d.Options, v) {
			return &ValidationError{Name: d.Name, Value: v, Reason: "must be one of: " + optionList(d.Options)}
		}
	case Text, FreeText:
	}
	return nil
}
