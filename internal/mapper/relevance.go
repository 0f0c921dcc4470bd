package mapper

import (
	"fmt"

	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

// ApplyRelevance sets the relevance of an existing group or question.
// A relevances file never creates entities.
func (s *Session) ApplyRelevance(row rowcodec.RelevanceRow) (Applied, error) {
	var res Applied
	if row.Code == "" {
		return res, ErrMissingCode
	}
	if err := s.claim("rel:"+string(row.Kind)+":"+row.Code, row.Line); err != nil {
		return res, err
	}

	switch row.Kind {
	case model.RowGroup:
		g := s.index.Group(row.Code)
		if g == nil {
			return res, fmt.Errorf("%w: group %s", ErrUnknownKey, row.Code)
		}
		if g.Relevance == row.Relevance {
			return res, nil
		}
		g.Relevance = row.Relevance
		if err := s.store.SaveGroup(g); err != nil {
			return res, saveFailed("group", err)
		}
	default:
		q := s.index.Question(row.Code)
		if q == nil {
			return res, fmt.Errorf("%w: question %s", ErrUnknownKey, row.Code)
		}
		rel := defaultRelevance(row.Relevance)
		if q.Relevance == rel {
			return res, nil
		}
		q.Relevance = rel
		if err := s.store.SaveQuestion(q); err != nil {
			return res, saveFailed("question", err)
		}
	}
	res.mark(Updated)
	return res, nil
}

// ApplyRelevanceRow is ApplyRelevance with failures wrapped as *RowError.
func (s *Session) ApplyRelevanceRow(row rowcodec.RelevanceRow) (Applied, error) {
	res, err := s.ApplyRelevance(row)
	if err != nil {
		return res, &RowError{Line: row.Line, Kind: string(row.Kind), Code: row.Code, Err: err}
	}
	return res, nil
}
