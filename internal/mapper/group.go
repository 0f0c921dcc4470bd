package mapper

import (
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

// FindGroup returns the group with code, or nil.
func (s *Session) FindGroup(code string) *model.Group {
	return s.index.Group(code)
}

// ApplyGroup creates or updates the group of a G row and makes it the
// parent of the questions that follow.
func (s *Session) ApplyGroup(row rowcodec.GroupRow) (*model.Group, Applied, error) {
	var res Applied
	// A new group ends the scope of the previous question even when the
	// row itself fails.
	s.question = nil
	s.group = nil

	if row.Code == "" {
		return nil, res, ErrMissingCode
	}
	if err := s.claim("G:"+row.Code, row.Line); err != nil {
		return nil, res, err
	}

	g := s.index.Group(row.Code)
	order := s.nextOrder("groups")
	if g == nil {
		g = &model.Group{
			SurveyID:  s.cfg.Survey.ID,
			Code:      row.Code,
			Relevance: row.Relevance,
			Order:     order,
			L10ns:     make(map[string]model.GroupL10n),
		}
		if err := s.store.SaveGroup(g); err != nil {
			return nil, res, saveFailed("group", err)
		}
		s.index.groups[g.Code] = g
		res.mark(Created)
	} else if g.Relevance != row.Relevance || g.Order != order {
		g.Relevance = row.Relevance
		g.Order = order
		if err := s.store.SaveGroup(g); err != nil {
			return nil, res, saveFailed("group", err)
		}
		res.mark(Updated)
	}

	// The group row exists now; every language attaches to its ID.
	for _, lang := range s.cfg.Languages {
		t := row.Texts[lang]
		want := model.GroupL10n{Name: t.Value, Description: t.Help}
		if have, ok := g.L10ns[lang]; ok && have == want {
			continue
		}
		if err := s.store.SaveGroupL10n(g.ID, lang, want); err != nil {
			return nil, res, saveFailed("group text "+lang, err)
		}
		g.L10ns[lang] = want
		res.mark(Updated)
	}

	s.group = g
	return g, res, nil
}
