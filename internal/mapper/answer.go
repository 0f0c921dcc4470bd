package mapper

import (
	"fmt"

	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

// FindSubquestion returns the sub-question of parentID on scale, or nil.
func (s *Session) FindSubquestion(parentID int64, scale int, title string) *model.Question {
	return s.index.Subquestion(parentID, scale, title)
}

// FindAnswer returns the answer of questionID on scale, or nil.
func (s *Session) FindAnswer(questionID int64, scale int, code string) *model.Answer {
	return s.index.Answer(questionID, scale, code)
}

// ApplySubquestion creates or updates the sub-question of an sq row below
// the current question.
func (s *Session) ApplySubquestion(row rowcodec.SubQuestionRow) (*model.Question, Applied, error) {
	var res Applied
	parent := s.question
	if parent == nil {
		return nil, res, ErrOrphan
	}
	if !parent.Type.UsesSubquestions() {
		return nil, res, fmt.Errorf("%w: %s (%s) has no sub-questions", ErrWrongChild, parent.Title, parent.Type.Name())
	}
	sq, err := s.applyChild(parent, 0, row.Base, row.Relevance, row.Mandatory, row.Attributes, &res)
	return sq, res, err
}

// ApplyAnswer handles an a row below the current question. Below a
// multi-flex question the row is a scale 1 sub-question; otherwise it is
// an answer option on the row's scale.
func (s *Session) ApplyAnswer(row rowcodec.AnswerRow) (Applied, error) {
	var res Applied
	parent := s.question
	if parent == nil {
		return res, ErrOrphan
	}
	if parent.Type.IsMultiFlex() {
		_, err := s.applyChild(parent, 1, row.Base, row.Relevance, "", row.Attributes, &res)
		return res, err
	}
	_, err := s.applyAnswer(parent, row, &res)
	return res, err
}

// applyChild upserts a sub-question of parent on scale.
func (s *Session) applyChild(parent *model.Question, scale int, base rowcodec.Base, relevance, mandatory string, cells rowcodec.AttributeCells, res *Applied) (*model.Question, error) {
	if base.Code == "" {
		return nil, ErrMissingCode
	}
	mandatory, err := normalizeMandatory(mandatory, "")
	if err != nil {
		return nil, err
	}
	scope := fmt.Sprintf("%d:%d", parent.ID, scale)
	if err := s.claim("sq:"+scope+":"+base.Code, base.Line); err != nil {
		return nil, err
	}
	ops, err := s.planAttributes(parent.Type, cells, res)
	if err != nil {
		return nil, err
	}

	want := model.Question{
		SurveyID:  parent.SurveyID,
		GroupID:   parent.GroupID,
		ParentID:  parent.ID,
		ScaleID:   scale,
		Title:     base.Code,
		Type:      parent.Type,
		Relevance: defaultRelevance(relevance),
		Mandatory: mandatory,
		Order:     s.nextOrder("sq:" + scope),
	}

	sq := s.index.Subquestion(parent.ID, scale, base.Code)
	if sq == nil {
		sq = &want
		sq.L10ns = make(map[string]model.QuestionL10n)
		if err := s.store.SaveQuestion(sq); err != nil {
			return nil, saveFailed("sub-question", err)
		}
		s.index.subquestions[childKey{parent.ID, scale, sq.Title}] = sq
		res.mark(Created)
	} else if !sameQuestion(sq, &want) {
		want.ID = sq.ID
		want.L10ns = sq.L10ns
		*sq = want
		if err := s.store.SaveQuestion(sq); err != nil {
			return nil, saveFailed("sub-question", err)
		}
		res.mark(Updated)
	}

	if err := s.saveQuestionTexts(sq, base.Texts, res); err != nil {
		return nil, err
	}
	changed, err := s.applyAttributes(sq.ID, ops)
	if err != nil {
		return nil, err
	}
	if changed {
		res.mark(Updated)
	}
	return sq, nil
}

func (s *Session) applyAnswer(parent *model.Question, row rowcodec.AnswerRow, res *Applied) (*model.Answer, error) {
	if !parent.Type.UsesAnswers() {
		return nil, fmt.Errorf("%w: %s (%s) has no answer options", ErrWrongChild, parent.Title, parent.Type.Name())
	}
	if row.Scale >= parent.Type.AnswerScales() {
		return nil, fmt.Errorf("%w: scale %d (%s has %d answer scale(s))", ErrInvalidValue, row.Scale, parent.Type.Name(), parent.Type.AnswerScales())
	}
	if row.Code == "" {
		return nil, ErrMissingCode
	}
	scope := fmt.Sprintf("%d:%d", parent.ID, row.Scale)
	if err := s.claim("a:"+scope+":"+row.Code, row.Line); err != nil {
		return nil, err
	}
	if !row.Attributes.Empty() {
		res.warn("answer options take no attributes; options cells ignored")
	}

	order := s.nextOrder("a:" + scope)
	a := s.index.Answer(parent.ID, row.Scale, row.Code)
	if a == nil {
		a = &model.Answer{
			QuestionID: parent.ID,
			Code:       row.Code,
			ScaleID:    row.Scale,
			Order:      order,
			L10ns:      make(map[string]model.AnswerL10n),
		}
		if err := s.store.SaveAnswer(a); err != nil {
			return nil, saveFailed("answer", err)
		}
		s.index.answers[childKey{parent.ID, row.Scale, a.Code}] = a
		res.mark(Created)
	} else if a.Order != order {
		a.Order = order
		if err := s.store.SaveAnswer(a); err != nil {
			return nil, saveFailed("answer", err)
		}
		res.mark(Updated)
	}

	if a.L10ns == nil {
		a.L10ns = make(map[string]model.AnswerL10n)
	}
	for _, lang := range s.cfg.Languages {
		want := model.AnswerL10n{Text: row.Texts[lang].Value}
		if have, ok := a.L10ns[lang]; ok && have == want {
			continue
		}
		if err := s.store.SaveAnswerL10n(a.ID, lang, want); err != nil {
			return nil, saveFailed("answer text "+lang, err)
		}
		a.L10ns[lang] = want
		res.mark(Updated)
	}
	return a, nil
}
