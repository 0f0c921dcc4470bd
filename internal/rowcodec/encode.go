package rowcodec

import (
	"sort"
	"strings"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/model"
)

// Encoder writes entities as questions-sheet rows.
type Encoder struct {
	layout Layout
	schema *attribute.Schema
	index  map[string]int
}

// NewEncoder returns an encoder for layout. Attributes are filtered
// through schema.
func NewEncoder(layout Layout, schema *attribute.Schema) *Encoder {
	index := make(map[string]int)
	for i, h := range layout.Header() {
		index[h] = i
	}
	return &Encoder{layout: layout, schema: schema, index: index}
}

func (e *Encoder) row() []string {
	return make([]string, e.layout.Width())
}

func (e *Encoder) set(row []string, col, value string) {
	row[e.index[col]] = value
}

// EncodeGroup writes a G row. Name and description go to the value and
// help columns.
func (e *Encoder) EncodeGroup(g model.Group) []string {
	row := e.row()
	e.set(row, ColType, string(model.RowGroup))
	e.set(row, ColCode, g.Code)
	for _, lang := range e.layout.Languages {
		l := g.L10ns[lang]
		e.set(row, ValueColumn(lang), l.Name)
		e.set(row, HelpColumn(lang), l.Description)
	}
	e.set(row, ColRelevance, g.Relevance)
	return row
}

// EncodeQuestion writes a Q row with its attributes.
func (e *Encoder) EncodeQuestion(q model.Question, attrs []model.Attribute) []string {
	row := e.row()
	e.set(row, ColType, string(model.RowQuestion))
	e.set(row, ColSubtype, string(q.Type))
	e.set(row, ColCode, q.Title)
	e.setTexts(row, q.L10ns, true)
	e.set(row, ColRelevance, q.Relevance)
	e.set(row, ColMandatory, q.Mandatory)
	e.set(row, ColSameScript, formatFlag(q.SameScript))
	e.set(row, ColTheme, q.Theme)
	e.setAttributes(row, q.Type, attrs)
	return row
}

// EncodeSubquestion writes an sq row. parentType selects the attribute
// vocabulary.
func (e *Encoder) EncodeSubquestion(sq model.Question, parentType model.QuestionType, attrs []model.Attribute) []string {
	row := e.row()
	e.set(row, ColType, string(model.RowSubQuestion))
	e.set(row, ColCode, sq.Title)
	e.setTexts(row, sq.L10ns, false)
	e.set(row, ColRelevance, sq.Relevance)
	e.set(row, ColMandatory, sq.Mandatory)
	e.setAttributes(row, parentType, attrs)
	return row
}

// EncodeColumnSubquestion writes a scale 1 sub-question of a multi-flex
// question as an a row, the form it is imported from.
func (e *Encoder) EncodeColumnSubquestion(sq model.Question, parentType model.QuestionType, attrs []model.Attribute) []string {
	row := e.row()
	e.set(row, ColType, string(model.RowAnswer))
	e.set(row, ColCode, sq.Title)
	e.setTexts(row, sq.L10ns, false)
	e.set(row, ColRelevance, sq.Relevance)
	e.setAttributes(row, parentType, attrs)
	return row
}

// EncodeAnswer writes an a row. A non-zero scale goes to the subtype cell.
func (e *Encoder) EncodeAnswer(a model.Answer) []string {
	row := e.row()
	e.set(row, ColType, string(model.RowAnswer))
	e.set(row, ColSubtype, formatScale(a.ScaleID))
	e.set(row, ColCode, a.Code)
	for _, lang := range e.layout.Languages {
		e.set(row, ValueColumn(lang), a.L10ns[lang].Text)
	}
	return row
}

func (e *Encoder) setTexts(row []string, l10ns map[string]model.QuestionL10n, script bool) {
	for _, lang := range e.layout.Languages {
		l := l10ns[lang]
		e.set(row, ValueColumn(lang), l.Text)
		e.set(row, HelpColumn(lang), l.Help)
		if script {
			e.set(row, ScriptColumn(lang), l.Script)
		}
	}
}

func (e *Encoder) setAttributes(row []string, t model.QuestionType, attrs []model.Attribute) {
	global, perLang := e.AttributeCells(t, attrs)
	e.set(row, ColOptions, global)
	for _, lang := range e.layout.Languages {
		e.set(row, OptionsColumn(lang), perLang[lang])
	}
}

// AttributeCells encodes attrs into the global options cell and one cell
// per layout language. Attributes not valid for t or equal to their
// default are left out. Stored placement decides the cell: a
// language-tagged attribute goes to its language's cell and an untagged
// one to the global cell, so re-import stores it the same way.
func (e *Encoder) AttributeCells(t model.QuestionType, attrs []model.Attribute) (global string, perLang map[string]string) {
	var globalOpts []Option
	langOpts := make(map[string][]Option, len(e.layout.Languages))

	for _, a := range attrs {
		if !e.schema.IsValid(t, a.Name) || !e.schema.IsNonDefault(t, a.Name, a.Value) {
			continue
		}
		opt := Option{Name: a.Name, Value: attribute.Scalar(a.Value)}
		if a.IsGlobal() {
			globalOpts = append(globalOpts, opt)
			continue
		}
		lang, ok := e.layoutLanguage(a.Language)
		if !ok {
			continue
		}
		langOpts[lang] = append(langOpts[lang], opt)
	}

	e.sortOptions(t, globalOpts)
	global = EncodeOptions(globalOpts)
	perLang = make(map[string]string, len(e.layout.Languages))
	for _, lang := range e.layout.Languages {
		opts := langOpts[lang]
		e.sortOptions(t, opts)
		perLang[lang] = EncodeOptions(opts)
	}
	return global, perLang
}

func (e *Encoder) layoutLanguage(lang string) (string, bool) {
	for _, l := range e.layout.Languages {
		if strings.EqualFold(l, lang) {
			return l, true
		}
	}
	return "", false
}

// sortOptions orders options by schema position; names outside the
// schema follow in alphabetical order.
func (e *Encoder) sortOptions(t model.QuestionType, opts []Option) {
	sort.SliceStable(opts, func(i, j int) bool {
		pi, pj := e.schema.Position(t, opts[i].Name), e.schema.Position(t, opts[j].Name)
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		}
		return opts[i].Name < opts[j].Name
	})
}
