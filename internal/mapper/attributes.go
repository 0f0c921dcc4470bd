package mapper

import (
	"fmt"
	"strings"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

// attrOp is one planned attribute write. An empty lang is the global
// value; clear removes the value instead of setting it.
type attrOp struct {
	name  string
	lang  string
	value string
	clear bool
}

type optionSource struct {
	lang string
	col  string
	opts rowcodec.ParsedOptions
}

// planAttributes validates the options cells of a row against the schema
// of t and returns the writes to make. Nothing is written here, so a row
// with one invalid attribute leaves the store untouched.
//
// Placement decides storage: names from the options cell are stored
// globally and names from options-{lang} for that language, whatever the
// classifier says. Disagreements with the classifier are warnings.
func (s *Session) planAttributes(t model.QuestionType, cells rowcodec.AttributeCells, res *Applied) ([]attrOp, error) {
	var ops []attrOp
	langSet := make(map[string]bool)

	sources := []optionSource{{"", rowcodec.ColOptions, cells.Global}}
	for _, lang := range s.cfg.Languages {
		if p, ok := cells.PerLanguage[lang]; ok {
			sources = append(sources, optionSource{lang, rowcodec.OptionsColumn(lang), p})
		}
	}

	for _, src := range sources {
		switch src.opts.Status {
		case rowcodec.ParseRecovered:
			res.warn("%s: repaired quotes in attribute JSON", src.col)
		case rowcodec.ParseFailed:
			if s.cfg.Strict {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformedOptions, src.col, src.opts.Err)
			}
			res.warn("%s: ignored unreadable attribute JSON: %v", src.col, src.opts.Err)
			continue
		}

		for _, o := range src.opts.Options {
			name := strings.TrimSpace(o.Name)
			if name == "" {
				res.warn("%s: skipped attribute with empty name", src.col)
				continue
			}
			op := attrOp{name: name, lang: src.lang, value: o.Value.Text, clear: o.Value.IsEmpty()}

			if !s.cfg.Schema.IsValid(t, name) {
				if !s.cfg.Survey.ImportUnknownAttributes {
					res.warn("%s: attribute %q is not defined for question type %s; skipped", src.col, name, t)
					continue
				}
			} else if !op.clear {
				if err := s.cfg.Schema.Validate(t, name, o.Value); err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAttribute, src.col, err)
				}
			}

			if scope, listed := s.cfg.Classifier.Classify(name); listed {
				switch {
				case src.lang == "" && scope == attribute.ScopeLanguage:
					res.warn("attribute %q is language-specific but was given in %s; stored for all languages", name, src.col)
				case src.lang != "" && scope == attribute.ScopeGlobal:
					res.warn("attribute %q is global but was given in %s; stored for %s only", name, src.col, src.lang)
				}
			}

			if src.lang != "" && !op.clear {
				langSet[name] = true
			}
			ops = append(ops, op)
		}
	}

	// A name may be stored one way only. Per-language values win over a
	// global value given in the same row.
	var out []attrOp
	for _, op := range ops {
		if op.lang == "" && !op.clear && langSet[op.name] {
			res.warn("attribute %q given both in %s and per language; global value ignored", op.name, rowcodec.ColOptions)
			continue
		}
		out = append(out, op)
	}
	return out, nil
}

// applyAttributes writes planned attribute ops for questionID. Setting a
// value removes values stored the other way; clearing a global value
// clears every language too.
func (s *Session) applyAttributes(questionID int64, ops []attrOp) (bool, error) {
	changed := false
	for _, op := range ops {
		stored := s.index.Attributes(questionID, op.name)

		if op.clear {
			for lang := range stored {
				if op.lang != "" && lang != op.lang {
					continue
				}
				if _, err := s.store.DeleteAttribute(questionID, op.name, lang); err != nil {
					return changed, saveFailed("attribute "+op.name, err)
				}
				s.index.dropAttribute(questionID, op.name, lang)
				changed = true
			}
			continue
		}

		for lang := range stored {
			opposite := (op.lang == "" && lang != "") || (op.lang != "" && lang == "")
			if !opposite {
				continue
			}
			if _, err := s.store.DeleteAttribute(questionID, op.name, lang); err != nil {
				return changed, saveFailed("attribute "+op.name, err)
			}
			s.index.dropAttribute(questionID, op.name, lang)
			changed = true
		}

		if have, ok := stored[op.lang]; ok && have.Value == op.value {
			continue
		}
		a := model.Attribute{QuestionID: questionID, Name: op.name, Value: op.value, Language: op.lang}
		if err := s.store.SetAttribute(a); err != nil {
			return changed, saveFailed("attribute "+op.name, err)
		}
		s.index.putAttribute(a)
		changed = true
	}
	return changed, nil
}
