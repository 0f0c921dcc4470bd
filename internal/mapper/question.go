package mapper

import (
	"fmt"
	"strings"

	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

// FindQuestion returns the top-level question with title, or nil.
func (s *Session) FindQuestion(title string) *model.Question {
	return s.index.Question(title)
}

// ApplyQuestion creates or updates the question of a Q row below the
// current group and makes it the parent of the rows that follow.
func (s *Session) ApplyQuestion(row rowcodec.QuestionRow) (*model.Question, Applied, error) {
	var res Applied
	s.question = nil

	if s.group == nil {
		return nil, res, ErrOrphan
	}
	if row.Code == "" {
		return nil, res, ErrMissingCode
	}
	if !row.Type.Known() {
		return nil, res, fmt.Errorf("%w %q", ErrUnknownType, row.Type)
	}
	mandatory, err := normalizeMandatory(row.Mandatory, "N")
	if err != nil {
		return nil, res, err
	}
	if err := s.claim("Q:"+row.Code, row.Line); err != nil {
		return nil, res, err
	}
	ops, err := s.planAttributes(row.Type, row.Attributes, &res)
	if err != nil {
		return nil, res, err
	}

	want := model.Question{
		SurveyID:   s.cfg.Survey.ID,
		GroupID:    s.group.ID,
		Title:      row.Code,
		Type:       row.Type,
		Relevance:  defaultRelevance(row.Relevance),
		Mandatory:  mandatory,
		SameScript: row.SameScript,
		Theme:      row.Theme,
		Order:      s.nextOrder(fmt.Sprintf("q:%d", s.group.ID)),
	}

	q := s.index.Question(row.Code)
	if q == nil {
		q = &want
		q.L10ns = make(map[string]model.QuestionL10n)
		if err := s.store.SaveQuestion(q); err != nil {
			return nil, res, saveFailed("question", err)
		}
		s.index.questions[q.Title] = q
		res.mark(Created)
	} else if !sameQuestion(q, &want) {
		if q.GroupID != want.GroupID {
			res.warn("question moved to group %s", s.group.Code)
		}
		if q.Type != want.Type {
			res.warn("question type changed from %s to %s", q.Type, want.Type)
		}
		want.ID = q.ID
		want.L10ns = q.L10ns
		*q = want
		if err := s.store.SaveQuestion(q); err != nil {
			return nil, res, saveFailed("question", err)
		}
		res.mark(Updated)
	}

	if err := s.saveQuestionTexts(q, row.Texts, &res); err != nil {
		return nil, res, err
	}
	changed, err := s.applyAttributes(q.ID, ops)
	if err != nil {
		return nil, res, err
	}
	if changed {
		res.mark(Updated)
	}

	s.question = q
	return q, res, nil
}

// saveQuestionTexts writes the texts of q for every import language that
// differs from what is stored.
func (s *Session) saveQuestionTexts(q *model.Question, texts map[string]rowcodec.Texts, res *Applied) error {
	if q.L10ns == nil {
		q.L10ns = make(map[string]model.QuestionL10n)
	}
	for _, lang := range s.cfg.Languages {
		t := texts[lang]
		want := model.QuestionL10n{Text: t.Value, Help: t.Help, Script: t.Script}
		if have, ok := q.L10ns[lang]; ok && have == want {
			continue
		}
		if err := s.store.SaveQuestionL10n(q.ID, lang, want); err != nil {
			return saveFailed("question text "+lang, err)
		}
		q.L10ns[lang] = want
		res.mark(Updated)
	}
	return nil
}

func sameQuestion(have, want *model.Question) bool {
	return have.GroupID == want.GroupID &&
		have.ParentID == want.ParentID &&
		have.ScaleID == want.ScaleID &&
		have.Type == want.Type &&
		have.Relevance == want.Relevance &&
		have.Mandatory == want.Mandatory &&
		have.SameScript == want.SameScript &&
		have.Theme == want.Theme &&
		have.Order == want.Order
}

// normalizeMandatory accepts Y, N and S (soft) in any case. An empty cell
// yields def.
func normalizeMandatory(s, def string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "":
		return def, nil
	case "Y", "N", "S":
		return s, nil
	}
	return "", fmt.Errorf("%w: mandatory %q (want Y, N or S)", ErrInvalidValue, s)
}

func defaultRelevance(s string) string {
	if strings.TrimSpace(s) == "" {
		return "1"
	}
	return s
}
