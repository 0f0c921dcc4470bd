package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pavelanni/surveysheet/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises
	// writes from an import run.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS surveys (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		languages TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		import_unknown_attributes INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS question_groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		survey_id INTEGER NOT NULL,
		code TEXT NOT NULL,
		relevance TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE (survey_id, code),
		FOREIGN KEY (survey_id) REFERENCES surveys(id)
	);

	CREATE TABLE IF NOT EXISTS group_l10ns (
		group_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (group_id, language),
		FOREIGN KEY (group_id) REFERENCES question_groups(id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		survey_id INTEGER NOT NULL,
		group_id INTEGER NOT NULL,
		parent_id INTEGER NOT NULL DEFAULT 0,
		scale_id INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		relevance TEXT NOT NULL DEFAULT '1',
		mandatory TEXT NOT NULL DEFAULT 'N',
		same_script INTEGER NOT NULL DEFAULT 0,
		theme TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE (survey_id, parent_id, scale_id, title),
		FOREIGN KEY (survey_id) REFERENCES surveys(id),
		FOREIGN KEY (group_id) REFERENCES question_groups(id)
	);

	CREATE TABLE IF NOT EXISTS question_l10ns (
		question_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		help TEXT NOT NULL DEFAULT '',
		script TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (question_id, language),
		FOREIGN KEY (question_id) REFERENCES questions(id)
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id INTEGER NOT NULL,
		code TEXT NOT NULL,
		scale_id INTEGER NOT NULL DEFAULT 0,
		sort_order INTEGER NOT NULL DEFAULT 0,
		UNIQUE (question_id, scale_id, code),
		FOREIGN KEY (question_id) REFERENCES questions(id)
	);

	CREATE TABLE IF NOT EXISTS answer_l10ns (
		answer_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (answer_id, language),
		FOREIGN KEY (answer_id) REFERENCES answers(id)
	);

	CREATE TABLE IF NOT EXISTS question_attributes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id INTEGER NOT NULL,
		attribute TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		UNIQUE (question_id, attribute, language),
		FOREIGN KEY (question_id) REFERENCES questions(id)
	);

	CREATE TABLE IF NOT EXISTS quotas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		survey_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		qlimit INTEGER NOT NULL DEFAULT 0,
		action INTEGER NOT NULL DEFAULT 1,
		active INTEGER NOT NULL DEFAULT 1,
		autoload_url INTEGER NOT NULL DEFAULT 0,
		UNIQUE (survey_id, name),
		FOREIGN KEY (survey_id) REFERENCES surveys(id)
	);

	CREATE TABLE IF NOT EXISTS quota_l10ns (
		quota_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		url_description TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (quota_id, language),
		FOREIGN KEY (quota_id) REFERENCES quotas(id)
	);

	CREATE TABLE IF NOT EXISTS quota_members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quota_id INTEGER NOT NULL,
		question_id INTEGER NOT NULL,
		code TEXT NOT NULL,
		UNIQUE (quota_id, question_id, code),
		FOREIGN KEY (quota_id) REFERENCES quotas(id),
		FOREIGN KEY (question_id) REFERENCES questions(id)
	);

	CREATE TABLE IF NOT EXISTS operators (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS import_runs (
		import_id TEXT PRIMARY KEY,
		survey_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		created INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		errors TEXT NOT NULL DEFAULT '[]',
		finished_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (survey_id) REFERENCES surveys(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func joinLanguages(langs []string) string {
	return strings.Join(langs, " ")
}

func splitLanguages(s string) []string {
	return strings.Fields(s)
}

// CreateSurvey stores a survey and returns its ID.
func (s *Store) CreateSurvey(sv model.Survey) (int64, error) {
	if len(sv.Languages) == 0 {
		return 0, fmt.Errorf("create survey %q: no languages", sv.Title)
	}
	res, err := s.db.Exec(
		`INSERT INTO surveys (title, languages, active, import_unknown_attributes) VALUES (?, ?, ?, ?)`,
		sv.Title, joinLanguages(sv.Languages), sv.Active, sv.ImportUnknownAttributes,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetSurvey returns a survey by ID, or nil if it does not exist.
func (s *Store) GetSurvey(id int64) (*model.Survey, error) {
	var sv model.Survey
	var langs string
	err := s.db.QueryRow(
		`SELECT id, title, languages, active, import_unknown_attributes FROM surveys WHERE id = ?`, id,
	).Scan(&sv.ID, &sv.Title, &langs, &sv.Active, &sv.ImportUnknownAttributes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sv.Languages = splitLanguages(langs)
	return &sv, nil
}

// ListSurveys returns all surveys.
func (s *Store) ListSurveys() ([]model.Survey, error) {
	rows, err := s.db.Query(`SELECT id, title, languages, active, import_unknown_attributes FROM surveys ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var surveys []model.Survey
	for rows.Next() {
		var sv model.Survey
		var langs string
		if err := rows.Scan(&sv.ID, &sv.Title, &langs, &sv.Active, &sv.ImportUnknownAttributes); err != nil {
			return nil, err
		}
		sv.Languages = splitLanguages(langs)
		surveys = append(surveys, sv)
	}
	return surveys, rows.Err()
}

// SetSurveyActive flips the active flag that guards structural changes.
func (s *Store) SetSurveyActive(id int64, active bool) error {
	return s.updateSurvey(id, `UPDATE surveys SET active = ? WHERE id = ?`, active)
}

// SetImportUnknownAttributes sets whether unknown attribute names are stored.
func (s *Store) SetImportUnknownAttributes(id int64, allow bool) error {
	return s.updateSurvey(id, `UPDATE surveys SET import_unknown_attributes = ? WHERE id = ?`, allow)
}

// SetSurveyLanguages replaces the survey languages; the first is the base.
func (s *Store) SetSurveyLanguages(id int64, langs []string) error {
	if len(langs) == 0 {
		return fmt.Errorf("survey %d: no languages", id)
	}
	return s.updateSurvey(id, `UPDATE surveys SET languages = ? WHERE id = ?`, joinLanguages(langs))
}

func (s *Store) updateSurvey(id int64, query string, value any) error {
	res, err := s.db.Exec(query, value, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("survey %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// DeleteSurveyContents removes every group, question, answer, attribute
// and quota of a survey and returns the number of groups, questions and
// answers removed.
func (s *Store) DeleteSurveyContents(surveyID int64) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmts := []struct {
		query string
		count bool
	}{
		{`DELETE FROM question_attributes WHERE question_id IN (SELECT id FROM questions WHERE survey_id = ?)`, false},
		{`DELETE FROM answer_l10ns WHERE answer_id IN (SELECT a.id FROM answers a JOIN questions q ON q.id = a.question_id WHERE q.survey_id = ?)`, false},
		{`DELETE FROM answers WHERE question_id IN (SELECT id FROM questions WHERE survey_id = ?)`, true},
		{`DELETE FROM question_l10ns WHERE question_id IN (SELECT id FROM questions WHERE survey_id = ?)`, false},
		{`DELETE FROM quota_members WHERE quota_id IN (SELECT id FROM quotas WHERE survey_id = ?)`, false},
		{`DELETE FROM quota_l10ns WHERE quota_id IN (SELECT id FROM quotas WHERE survey_id = ?)`, false},
		{`DELETE FROM quotas WHERE survey_id = ?`, false},
		{`DELETE FROM questions WHERE survey_id = ?`, true},
		{`DELETE FROM group_l10ns WHERE group_id IN (SELECT id FROM question_groups WHERE survey_id = ?)`, false},
		{`DELETE FROM question_groups WHERE survey_id = ?`, true},
	}
	var total int64
	for _, st := range stmts {
		res, err := tx.Exec(st.query, surveyID)
		if err != nil {
			return 0, err
		}
		if st.count {
			n, err := res.RowsAffected()
			if err != nil {
				return 0, err
			}
			total += n
		}
	}
	return total, tx.Commit()
}
