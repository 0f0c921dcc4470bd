package attribute

import (
	"testing"

	"github.com/pavelanni/surveysheet/internal/model"
)

func TestClassifierPartitionIsExclusive(t *testing.T) {
	c := NewClassifier()
	s := NewSchema()

	names := map[string]bool{"made_up_attribute": true, "": true}
	for _, n := range globalNames {
		names[n] = true
	}
	for _, n := range languageSpecificNames {
		names[n] = true
	}
	for _, qt := range model.QuestionTypes() {
		for _, d := range s.AttributesFor(qt) {
			names[d.Name] = true
		}
	}

	for n := range names {
		if c.IsGlobal(n) == c.IsLanguageSpecific(n) {
			t.Errorf("%q: IsGlobal=%v IsLanguageSpecific=%v, want exactly one", n, c.IsGlobal(n), c.IsLanguageSpecific(n))
		}
	}
}

func TestClassifierListsDoNotOverlap(t *testing.T) {
	global := make(map[string]bool, len(globalNames))
	for _, n := range globalNames {
		global[n] = true
	}
	for _, n := range languageSpecificNames {
		if global[n] {
			t.Errorf("%q is listed as both global and language-specific", n)
		}
	}
}

func TestSchemaNamesAreClassified(t *testing.T) {
	c := NewClassifier()
	s := NewSchema()
	for _, qt := range model.QuestionTypes() {
		for _, d := range s.AttributesFor(qt) {
			if _, ok := c.Classify(d.Name); !ok {
				t.Errorf("%q/%s is not on either classifier list", qt, d.Name)
			}
		}
	}
}

func TestUnknownNameIsGlobal(t *testing.T) {
	c := NewClassifier()
	if !c.IsGlobal("brand_new_setting") {
		t.Error("unknown attribute should default to global")
	}
	if _, known := c.Classify("brand_new_setting"); known {
		t.Error("unknown attribute should not be reported as listed")
	}
}

func TestSeparate(t *testing.T) {
	c := NewClassifier()
	global, specific := c.Separate(map[string]string{
		"hidden":   "1",
		"prefix":   "EUR",
		"suffix":   "per month",
		"whatever": "x",
	})
	if len(global) != 2 || global["hidden"] != "1" || global["whatever"] != "x" {
		t.Errorf("global = %v", global)
	}
	if len(specific) != 2 || specific["prefix"] != "EUR" || specific["suffix"] != "per month" {
		t.Errorf("languageSpecific = %v", specific)
	}
}
