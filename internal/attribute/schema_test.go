package attribute

import (
	"errors"
	"testing"

	"github.com/pavelanni/surveysheet/internal/model"
)

func TestAttributesForMergesUniversal(t *testing.T) {
	s := NewSchema()

	for _, qt := range model.QuestionTypes() {
		if !s.IsValid(qt, "hidden") {
			t.Errorf("type %q: universal attribute hidden missing", qt)
		}
		if !s.IsValid(qt, "em_validation_q") {
			t.Errorf("type %q: universal attribute em_validation_q missing", qt)
		}
	}

	if !s.IsValid(model.TypeList, "other_replace_text") {
		t.Error("L should accept other_replace_text")
	}
	if s.IsValid(model.TypeShortText, "other_replace_text") {
		t.Error("S should not accept other_replace_text")
	}
}

func TestAttributesForOrderIsStable(t *testing.T) {
	s := NewSchema()
	a := s.AttributesFor(model.TypeMultipleChoice)
	b := s.AttributesFor(model.TypeMultipleChoice)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			t.Fatalf("position %d: %q vs %q", i, a[i].Name, b[i].Name)
		}
	}
	if a[0].Name != "hidden" {
		t.Errorf("first attribute = %q, want universal 'hidden' first", a[0].Name)
	}
	seen := make(map[string]bool)
	for _, d := range a {
		if seen[d.Name] {
			t.Errorf("duplicate descriptor %q", d.Name)
		}
		seen[d.Name] = true
	}
}

func TestTypeSpecificOverridesUniversal(t *testing.T) {
	ts := newTypeSet(
		[]Descriptor{sw("hidden", "0", "Display", "")},
		[]Descriptor{sw("hidden", "1", "Display", "")},
	)
	if got := ts.byName["hidden"].Default; got != "1" {
		t.Errorf("default = %q, want type-specific 1", got)
	}
	if len(ts.order) != 1 {
		t.Errorf("order has %d entries, want 1", len(ts.order))
	}
}

func TestUnknownTypeGetsUniversal(t *testing.T) {
	s := NewSchema()
	got := s.AttributesFor(model.QuestionType("?"))
	if len(got) != len(universal) {
		t.Errorf("unknown type: %d attributes, want %d", len(got), len(universal))
	}
}

func TestIsNonDefault(t *testing.T) {
	s := NewSchema()
	tests := []struct {
		name  string
		qt    model.QuestionType
		attr  string
		value string
		want  bool
	}{
		{"switch default", model.TypeList, "hidden", "0", false},
		{"switch set", model.TypeList, "hidden", "1", true},
		{"empty default empty value", model.TypeList, "cssclass", "", false},
		{"empty default with value", model.TypeList, "cssclass", "wide", true},
		{"non-empty default", model.TypeFileUpload, "max_filesize", "10240", false},
		{"non-empty default changed", model.TypeFileUpload, "max_filesize", "20", true},
		{"non-empty default cleared", model.TypeFileUpload, "max_filesize", "", true},
		{"unknown name empty", model.TypeList, "nope", "", false},
		{"unknown name value", model.TypeList, "nope", "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsNonDefault(tt.qt, tt.attr, tt.value); got != tt.want {
				t.Errorf("IsNonDefault(%q, %q, %q) = %v, want %v", tt.qt, tt.attr, tt.value, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := NewSchema()
	tests := []struct {
		name  string
		qt    model.QuestionType
		attr  string
		value Value
		ok    bool
	}{
		{"switch 1", model.TypeList, "hidden", Scalar("1"), true},
		{"switch 0", model.TypeList, "hidden", Scalar("0"), true},
		{"switch yes", model.TypeList, "hidden", Scalar("yes"), false},
		{"switch empty", model.TypeList, "hidden", Scalar(""), false},
		{"integer", model.TypeShortText, "maximum_chars", Scalar("200"), true},
		{"integer empty", model.TypeShortText, "maximum_chars", Scalar(""), true},
		{"integer fraction", model.TypeShortText, "maximum_chars", Scalar("2.5"), false},
		{"integer below min", model.TypeShortText, "maximum_chars", Scalar("-1"), false},
		{"integer above max", model.TypeArray, "answer_width", Scalar("101"), false},
		{"select option", model.TypeList, "answer_order", Scalar("random"), true},
		{"select unknown", model.TypeList, "answer_order", Scalar("shuffled"), false},
		{"text anything", model.TypeList, "cssclass", Scalar("a b c"), true},
		{"free text anything", model.TypeList, "em_validation_q", Scalar("Q1 > 2"), true},
		{"text composite", model.TypeList, "cssclass", Value{Text: `["a"]`, Composite: true}, false},
		{"not in type", model.TypeShortText, "answer_order", Scalar("normal"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.qt, tt.attr, tt.value)
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("Validate() = %v, want *ValidationError", err)
				}
			}
		})
	}
}

func TestEveryDefaultValidates(t *testing.T) {
	s := NewSchema()
	for _, qt := range model.QuestionTypes() {
		for _, d := range s.AttributesFor(qt) {
			if d.Type == Switch && d.Default == "" {
				t.Errorf("%q/%s: switch without default", qt, d.Name)
				continue
			}
			if err := d.Check(Scalar(d.Default)); err != nil {
				t.Errorf("%q/%s: default does not validate: %v", qt, d.Name, err)
			}
		}
	}
}
