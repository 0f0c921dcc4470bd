package mapper

import (
	"fmt"

	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

// FindQuota returns the quota with name, or nil.
func (s *Session) FindQuota(name string) *model.Quota {
	return s.index.Quota(name)
}

// ApplyQuota creates or updates the quota of a Q row of a quotas sheet and
// makes it the owner of the QM rows that follow.
func (s *Session) ApplyQuota(row *rowcodec.QuotaRow) (*model.Quota, Applied, error) {
	var res Applied
	s.quota = nil

	if row.Name == "" {
		return nil, res, ErrMissingCode
	}
	if err := s.claim("quota:"+row.Name, row.Line); err != nil {
		return nil, res, err
	}

	q := s.index.Quota(row.Name)
	if q == nil {
		q = &model.Quota{
			SurveyID:    s.cfg.Survey.ID,
			Name:        row.Name,
			Limit:       row.Limit,
			Action:      row.Action,
			Active:      row.Active,
			AutoloadURL: row.AutoloadURL,
			L10ns:       make(map[string]model.QuotaL10n),
		}
		if err := s.store.SaveQuota(q); err != nil {
			return nil, res, saveFailed("quota", err)
		}
		s.index.quotas[q.Name] = q
		res.mark(Created)
	} else if q.Limit != row.Limit || q.Action != row.Action || q.Active != row.Active || q.AutoloadURL != row.AutoloadURL {
		q.Limit = row.Limit
		q.Action = row.Action
		q.Active = row.Active
		q.AutoloadURL = row.AutoloadURL
		if err := s.store.SaveQuota(q); err != nil {
			return nil, res, saveFailed("quota", err)
		}
		res.mark(Updated)
	}

	if q.L10ns == nil {
		q.L10ns = make(map[string]model.QuotaL10n)
	}
	for _, lang := range s.cfg.Languages {
		want := row.Texts[lang]
		if have, ok := q.L10ns[lang]; ok && have == want {
			continue
		}
		if err := s.store.SaveQuotaL10n(q.ID, lang, want); err != nil {
			return nil, res, saveFailed("quota text "+lang, err)
		}
		q.L10ns[lang] = want
		res.mark(Updated)
	}

	s.quota = q
	return q, res, nil
}

// ApplyQuotaMember binds the current quota to an answer code of a
// top-level question. The code is not checked against stored answers
// since some question types have built-in codes.
func (s *Session) ApplyQuotaMember(row *rowcodec.QuotaMemberRow) (Applied, error) {
	var res Applied
	if s.quota == nil {
		return res, ErrOrphan
	}
	if row.Question == "" || row.Answer == "" {
		return res, ErrMissingCode
	}
	q := s.index.Question(row.Question)
	if q == nil {
		return res, fmt.Errorf("%w: question %s", ErrUnknownKey, row.Question)
	}
	if err := s.claim(fmt.Sprintf("qm:%d:%d:%s", s.quota.ID, q.ID, row.Answer), row.Line); err != nil {
		return res, err
	}

	key := memberKey{s.quota.ID, q.ID, row.Answer}
	if s.index.members[key] {
		return res, nil
	}
	m := &model.QuotaMember{QuotaID: s.quota.ID, QuestionID: q.ID, Code: row.Answer}
	inserted, err := s.store.SaveQuotaMember(m)
	if err != nil {
		return res, saveFailed("quota member", err)
	}
	s.index.members[key] = true
	if inserted {
		res.mark(Created)
	}
	return res, nil
}

// ApplyQuotaRow dispatches a decoded quotas-sheet row. Failures are
// returned as *RowError.
func (s *Session) ApplyQuotaRow(row any) (Applied, error) {
	var (
		res  Applied
		err  error
		line int
		kind string
		code string
	)
	switch r := row.(type) {
	case *rowcodec.QuotaRow:
		line, kind, code = r.Line, rowcodec.QuotaRowQuota, r.Name
		_, res, err = s.ApplyQuota(r)
	case *rowcodec.QuotaMemberRow:
		line, kind, code = r.Line, rowcodec.QuotaRowMember, r.Question
		res, err = s.ApplyQuotaMember(r)
	default:
		err = fmt.Errorf("%w: %T", rowcodec.ErrUnknownRowType, row)
	}
	if err != nil {
		return res, &RowError{Line: line, Kind: kind, Code: code, Err: err}
	}
	return res, nil
}
