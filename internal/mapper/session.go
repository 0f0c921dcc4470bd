// Package mapper applies decoded sheet rows to the persisted survey
// structure. Entities are matched by business key through an Index built
// once per run, so importing the same file twice updates in place.
package mapper

import (
	"fmt"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

// Change says what applying a row did to the store.
type Change int

// Created ranks above Updated so that a row which creates an entity and
// then attaches texts to it reports Created.
const (
	Unchanged Change = iota
	Updated
	Created
)

func (c Change) String() string {
	switch c {
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return "unchanged"
}

// Applied is the outcome of one successfully applied row.
type Applied struct {
	Change   Change
	Warnings []string
}

func (a *Applied) warn(format string, args ...any) {
	a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
}

func (a *Applied) mark(c Change) {
	if c > a.Change {
		a.Change = c
	}
}

// Config holds what a Session needs besides the store.
type Config struct {
	Survey     model.Survey
	Languages  []string
	Schema     *attribute.Schema
	Classifier *attribute.Classifier
	// Strict turns unreadable attribute cells into row errors.
	Strict bool
}

// Session applies the rows of one import run in file order. The current
// group, question and quota are the parents of the rows that follow them.
type Session struct {
	store Store
	cfg   Config
	index *Index

	group    *model.Group
	question *model.Question
	quota    *model.Quota

	seen     map[string]int
	ordering map[string]int
}

// NewSession loads the index of cfg.Survey and returns a session ready
// to apply rows.
func NewSession(st Store, cfg Config) (*Session, error) {
	if cfg.Schema == nil {
		cfg.Schema = attribute.NewSchema()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = attribute.NewClassifier()
	}
	idx, err := BuildIndex(st, cfg.Survey.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		store:    st,
		cfg:      cfg,
		index:    idx,
		seen:     make(map[string]int),
		ordering: make(map[string]int),
	}, nil
}

// Index returns the session's lookup index.
func (s *Session) Index() *Index { return s.index }

// Apply dispatches a questions-sheet row to its mapper. Failures are
// returned as *RowError.
func (s *Session) Apply(row rowcodec.Row) (Applied, error) {
	var (
		res Applied
		err error
	)
	switch r := row.(type) {
	case rowcodec.GroupRow:
		_, res, err = s.ApplyGroup(r)
	case rowcodec.QuestionRow:
		_, res, err = s.ApplyQuestion(r)
	case rowcodec.SubQuestionRow:
		_, res, err = s.ApplySubquestion(r)
	case rowcodec.AnswerRow:
		res, err = s.ApplyAnswer(r)
	default:
		err = fmt.Errorf("%w: %T", rowcodec.ErrUnknownRowType, row)
	}
	if err != nil {
		return res, &RowError{Line: row.LineNumber(), Kind: string(row.Kind()), Code: row.Key(), Err: err}
	}
	return res, nil
}

// claim records a business key for this run. A key claimed twice is a
// duplicate within the file.
func (s *Session) claim(key string, line int) error {
	if first, ok := s.seen[key]; ok {
		return fmt.Errorf("%w (first used in row %d)", ErrDuplicateKey, first)
	}
	s.seen[key] = line
	return nil
}

// nextOrder returns the next sort position within scope; file order
// becomes stored order.
func (s *Session) nextOrder(scope string) int {
	s.ordering[scope]++
	return s.ordering[scope]
}

func saveFailed(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSaveFailed, what, err)
}
