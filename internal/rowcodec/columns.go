// Package rowcodec maps structure entities to flat spreadsheet rows and
// back. It owns the column layout, the per-language column groups and the
// JSON attribute cells.
package rowcodec

import (
	"strings"
)

// Fixed column names of the questions sheet.
const (
	ColType       = "type"
	ColSubtype    = "subtype"
	ColCode       = "code"
	ColRelevance  = "relevance"
	ColMandatory  = "mandatory"
	ColSameScript = "same_script"
	ColTheme      = "theme"
	ColOptions    = "options"
)

const (
	valuePrefix   = "value-"
	helpPrefix    = "help-"
	scriptPrefix  = "script-"
	optionsPrefix = "options-"
)

// ValueColumn returns the text column of lang.
func ValueColumn(lang string) string { return valuePrefix + lang }

// HelpColumn returns the help/description column of lang.
func HelpColumn(lang string) string { return helpPrefix + lang }

// ScriptColumn returns the question script column of lang.
func ScriptColumn(lang string) string { return scriptPrefix + lang }

// OptionsColumn returns the language-specific attribute column of lang.
func OptionsColumn(lang string) string { return optionsPrefix + lang }

// Layout is the column layout of a questions sheet for a fixed,
// ordered set of languages.
type Layout struct {
	Languages []string
}

// NewLayout returns the layout for langs, in the given order.
func NewLayout(langs []string) Layout {
	l := make([]string, len(langs))
	copy(l, langs)
	return Layout{Languages: l}
}

// Header returns the header row.
func (l Layout) Header() []string {
	h := []string{ColType, ColSubtype, ColCode}
	for _, lang := range l.Languages {
		h = append(h, ValueColumn(lang), HelpColumn(lang), ScriptColumn(lang))
	}
	h = append(h, ColRelevance, ColMandatory, ColSameScript, ColTheme, ColOptions)
	for _, lang := range l.Languages {
		h = append(h, OptionsColumn(lang))
	}
	return h
}

// Width returns the number of columns.
func (l Layout) Width() int {
	return 8 + 4*len(l.Languages)
}

// LanguagesFromHeader derives the languages of a sheet from its
// prefix-{lang} columns, in header order. Use "value-" for question
// sheets and "message-" for quota sheets.
func LanguagesFromHeader(header []string, prefix string) []string {
	var langs []string
	seen := make(map[string]bool)
	for _, h := range header {
		h = strings.TrimSpace(h)
		if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
			continue
		}
		lang := h[len(prefix):]
		key := strings.ToLower(lang)
		if seen[key] {
			continue
		}
		seen[key] = true
		langs = append(langs, lang)
	}
	return langs
}
