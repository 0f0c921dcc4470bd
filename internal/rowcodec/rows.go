package rowcodec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pavelanni/surveysheet/internal/model"
)

// ErrUnknownRowType is returned for a type cell that names no row kind.
var ErrUnknownRowType = errors.New("unknown row type")

// Row is a decoded questions-sheet row. The concrete types are GroupRow,
// QuestionRow, SubQuestionRow and AnswerRow.
type Row interface {
	Kind() model.RowKind
	LineNumber() int
	Key() string
}

// Texts holds the per-language cells of one row.
type Texts struct {
	Value  string
	Help   string
	Script string
}

// AttributeCells holds the decoded options columns of a row.
type AttributeCells struct {
	Global      ParsedOptions
	PerLanguage map[string]ParsedOptions
}

// Empty reports whether no attribute cell mentions anything.
func (a AttributeCells) Empty() bool {
	if len(a.Global.Options) > 0 {
		return false
	}
	for _, p := range a.PerLanguage {
		if len(p.Options) > 0 {
			return false
		}
	}
	return true
}

// Base carries the cells every row kind has.
type Base struct {
	Line  int
	Code  string
	Texts map[string]Texts
}

func (b Base) LineNumber() int { return b.Line }
func (b Base) Key() string     { return b.Code }

// GroupRow is a G row.
type GroupRow struct {
	Base
	Relevance string
}

func (GroupRow) Kind() model.RowKind { return model.RowGroup }

// QuestionRow is a Q row.
type QuestionRow struct {
	Base
	Type       model.QuestionType
	Relevance  string
	Mandatory  string
	SameScript bool
	Theme      string
	Attributes AttributeCells
}

func (QuestionRow) Kind() model.RowKind { return model.RowQuestion }

// SubQuestionRow is an sq row. Its parent is the closest preceding Q row.
type SubQuestionRow struct {
	Base
	Relevance  string
	Mandatory  string
	Attributes AttributeCells
}

func (SubQuestionRow) Kind() model.RowKind { return model.RowSubQuestion }

// AnswerRow is an a row. Scale is read from the subtype cell. For
// multi-flex parents the row becomes a scale 1 sub-question, which is why
// it keeps relevance and attribute cells.
type AnswerRow struct {
	Base
	Scale      int
	Relevance  string
	Attributes AttributeCells
}

func (AnswerRow) Kind() model.RowKind { return model.RowAnswer }

// Codec decodes and encodes questions-sheet rows for one layout.
type Codec struct {
	layout Layout
}

// NewCodec returns a codec for layout.
func NewCodec(layout Layout) *Codec {
	return &Codec{layout: layout}
}

// Layout returns the codec's column layout.
func (c *Codec) Layout() Layout { return c.layout }

// Decode turns a record into a typed row. Only ErrUnknownRowType and
// malformed fixed cells are errors; bad attribute JSON is reported through
// the row's ParsedOptions.
func (c *Codec) Decode(rec Record) (Row, error) {
	kind, ok := model.ParseRowKind(rec.Get(ColType))
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownRowType, rec.Get(ColType))
	}
	base := Base{Line: rec.Line, Code: strings.TrimSpace(rec.Get(ColCode)), Texts: c.texts(rec)}

	switch kind {
	case model.RowGroup:
		return GroupRow{Base: base, Relevance: rec.Get(ColRelevance)}, nil
	case model.RowQuestion:
		return QuestionRow{
			Base:       base,
			Type:       model.QuestionType(strings.TrimSpace(rec.Get(ColSubtype))),
			Relevance:  rec.Get(ColRelevance),
			Mandatory:  strings.TrimSpace(rec.Get(ColMandatory)),
			SameScript: parseFlag(rec.Get(ColSameScript)),
			Theme:      strings.TrimSpace(rec.Get(ColTheme)),
			Attributes: c.attributes(rec),
		}, nil
	case model.RowSubQuestion:
		return SubQuestionRow{
			Base:       base,
			Relevance:  rec.Get(ColRelevance),
			Mandatory:  strings.TrimSpace(rec.Get(ColMandatory)),
			Attributes: c.attributes(rec),
		}, nil
	default:
		scale, err := parseScale(rec.Get(ColSubtype))
		if err != nil {
			return nil, err
		}
		return AnswerRow{
			Base:       base,
			Scale:      scale,
			Relevance:  rec.Get(ColRelevance),
			Attributes: c.attributes(rec),
		}, nil
	}
}

func (c *Codec) texts(rec Record) map[string]Texts {
	out := make(map[string]Texts, len(c.layout.Languages))
	for _, lang := range c.layout.Languages {
		out[lang] = Texts{
			Value:  rec.Get(ValueColumn(lang)),
			Help:   rec.Get(HelpColumn(lang)),
			Script: rec.Get(ScriptColumn(lang)),
		}
	}
	return out
}

func (c *Codec) attributes(rec Record) AttributeCells {
	cells := AttributeCells{
		Global:      ParseOptions(rec.Get(ColOptions)),
		PerLanguage: make(map[string]ParsedOptions, len(c.layout.Languages)),
	}
	for _, lang := range c.layout.Languages {
		if !rec.Has(OptionsColumn(lang)) {
			continue
		}
		cells.PerLanguage[lang] = ParseOptions(rec.Get(OptionsColumn(lang)))
	}
	return cells
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "true":
		return true
	}
	return false
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseScale(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 1 {
		return 0, fmt.Errorf("answer scale %q: must be empty, 0 or 1", s)
	}
	return n, nil
}

func formatScale(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
