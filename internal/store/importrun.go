package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/surveysheet/internal/model"
)

// RecordImport stores the summary of a finished import.
func (s *Store) RecordImport(res model.ImportResult, finishedAt time.Time) error {
	errs := res.Errors
	if errs == nil {
		errs = []model.Issue{}
	}
	data, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encode import errors: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO import_runs (import_id, survey_id, kind, processed, succeeded, failed, created, updated, errors, finished_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ImportID, res.SurveyID, res.Kind, res.Processed, res.Succeeded, res.Failed,
		res.Created, res.Updated, string(data), finishedAt, res.Duration.Milliseconds(),
	)
	return err
}

// ListImports returns the most recent imports of a survey, newest first.
// A limit of zero returns all of them.
func (s *Store) ListImports(surveyID int64, limit int) ([]model.ImportRun, error) {
	query := `SELECT import_id, survey_id, kind, processed, succeeded, failed, created, updated, errors, finished_at, duration_ms
		 FROM import_runs WHERE survey_id = ? ORDER BY finished_at DESC`
	args := []any{surveyID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.ImportRun
	for rows.Next() {
		var r model.ImportRun
		var errs string
		var ms int64
		if err := rows.Scan(&r.ImportID, &r.SurveyID, &r.Kind, &r.Processed, &r.Succeeded, &r.Failed,
			&r.Created, &r.Updated, &errs, &r.FinishedAt, &ms); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(errs), &r.Errors); err != nil {
			return nil, fmt.Errorf("decode errors of import %s: %w", r.ImportID, err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
