package store

import (
	"github.com/pavelanni/surveysheet/internal/model"
)

// ListQuotas returns the quotas of a survey with their texts.
func (s *Store) ListQuotas(surveyID int64) ([]model.Quota, error) {
	rows, err := s.db.Query(
		`SELECT id, survey_id, name, qlimit, action, active, autoload_url FROM quotas
		 WHERE survey_id = ? ORDER BY id`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	var quotas []model.Quota
	byID := make(map[int64]int)
	for rows.Next() {
		var q model.Quota
		if err := rows.Scan(&q.ID, &q.SurveyID, &q.Name, &q.Limit, &q.Action, &q.Active, &q.AutoloadURL); err != nil {
			rows.Close()
			return nil, err
		}
		q.L10ns = make(map[string]model.QuotaL10n)
		byID[q.ID] = len(quotas)
		quotas = append(quotas, q)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.Query(
		`SELECT l.quota_id, l.language, l.message, l.url, l.url_description FROM quota_l10ns l
		 JOIN quotas q ON q.id = l.quota_id WHERE q.survey_id = ?`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var lang string
		var l model.QuotaL10n
		if err := rows.Scan(&id, &lang, &l.Message, &l.URL, &l.URLDescription); err != nil {
			return nil, err
		}
		if i, ok := byID[id]; ok {
			quotas[i].L10ns[lang] = l
		}
	}
	return quotas, rows.Err()
}

// SaveQuota inserts q when q.ID is zero and updates it otherwise.
func (s *Store) SaveQuota(q *model.Quota) error {
	if q.ID != 0 {
		_, err := s.db.Exec(
			`UPDATE quotas SET name = ?, qlimit = ?, action = ?, active = ?, autoload_url = ? WHERE id = ?`,
			q.Name, q.Limit, q.Action, q.Active, q.AutoloadURL, q.ID,
		)
		return err
	}
	res, err := s.db.Exec(
		`INSERT INTO quotas (survey_id, name, qlimit, action, active, autoload_url) VALUES (?, ?, ?, ?, ?, ?)`,
		q.SurveyID, q.Name, q.Limit, q.Action, q.Active, q.AutoloadURL,
	)
	if err != nil {
		return err
	}
	q.ID, err = res.LastInsertId()
	return err
}

// SaveQuotaL10n upserts the texts of a quota in one language.
func (s *Store) SaveQuotaL10n(quotaID int64, lang string, l model.QuotaL10n) error {
	_, err := s.db.Exec(
		`INSERT INTO quota_l10ns (quota_id, language, message, url, url_description) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(quota_id, language) DO UPDATE SET message = ?, url = ?, url_description = ?`,
		quotaID, lang, l.Message, l.URL, l.URLDescription, l.Message, l.URL, l.URLDescription,
	)
	return err
}

// ListQuotaMembers returns the members of all quotas of a survey.
func (s *Store) ListQuotaMembers(surveyID int64) ([]model.QuotaMember, error) {
	rows, err := s.db.Query(
		`SELECT m.id, m.quota_id, m.question_id, m.code FROM quota_members m
		 JOIN quotas q ON q.id = m.quota_id WHERE q.survey_id = ? ORDER BY m.quota_id, m.id`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []model.QuotaMember
	for rows.Next() {
		var m model.QuotaMember
		if err := rows.Scan(&m.ID, &m.QuotaID, &m.QuestionID, &m.Code); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// SaveQuotaMember stores a member unless the same one already exists.
// It reports whether a row was inserted.
func (s *Store) SaveQuotaMember(m *model.QuotaMember) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO quota_members (quota_id, question_id, code) VALUES (?, ?, ?)
		 ON CONFLICT(quota_id, question_id, code) DO NOTHING`,
		m.QuotaID, m.QuestionID, m.Code,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil || n == 0 {
		return false, err
	}
	m.ID, err = res.LastInsertId()
	return true, err
}
