package store

import (
	"github.com/pavelanni/surveysheet/internal/model"
)

// ListAttributes returns every stored attribute of a survey's questions
// and sub-questions, ordered by question, name and language.
func (s *Store) ListAttributes(surveyID int64) ([]model.Attribute, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.question_id, a.attribute, a.value, a.language FROM question_attributes a
		 JOIN questions q ON q.id = a.question_id WHERE q.survey_id = ?
		 ORDER BY a.question_id, a.attribute, a.language`, surveyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attrs []model.Attribute
	for rows.Next() {
		var a model.Attribute
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Name, &a.Value, &a.Language); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}

// SetAttribute upserts the value of (question, name, language). An empty
// language stores the global value.
func (s *Store) SetAttribute(a model.Attribute) error {
	_, err := s.db.Exec(
		`INSERT INTO question_attributes (question_id, attribute, value, language) VALUES (?, ?, ?, ?)
		 ON CONFLICT(question_id, attribute, language) DO UPDATE SET value = ?`,
		a.QuestionID, a.Name, a.Value, a.Language, a.Value,
	)
	return err
}

// DeleteAttribute removes the value of (question, name, language) and
// reports how many rows were removed.
func (s *Store) DeleteAttribute(questionID int64, name, language string) (int64, error) {
	res, err := s.db.Exec(
		`DELETE FROM question_attributes WHERE question_id = ? AND attribute = ? AND language = ?`,
		questionID, name, language,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
