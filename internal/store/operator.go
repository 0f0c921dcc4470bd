package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/pavelanni/surveysheet/internal/model"
)

// CreateOperator inserts a new operator.
func (s *Store) CreateOperator(o model.Operator) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO operators (username, password_hash, active, created_at) VALUES (?, ?, ?, ?)`,
		o.Username, o.PasswordHash, o.Active, time.Now(),
	)
	if err != nil {
		slog.Error("failed to create operator", "username", o.Username, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created operator", "id", id, "username", o.Username)
	return id, nil
}

// GetOperatorByUsername returns an operator by username.
func (s *Store) GetOperatorByUsername(username string) (*model.Operator, error) {
	var o model.Operator
	err := s.db.QueryRow(
		`SELECT id, username, password_hash, active, created_at FROM operators WHERE username = ?`, username,
	).Scan(&o.ID, &o.Username, &o.PasswordHash, &o.Active, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOperators returns all operators.
func (s *Store) ListOperators() ([]model.Operator, error) {
	rows, err := s.db.Query(`SELECT id, username, password_hash, active, created_at FROM operators ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ops []model.Operator
	for rows.Next() {
		var o model.Operator
		if err := rows.Scan(&o.ID, &o.Username, &o.PasswordHash, &o.Active, &o.CreatedAt); err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, rows.Err()
}

// SetOperatorActive enables or disables an operator.
func (s *Store) SetOperatorActive(username string, active bool) error {
	res, err := s.db.Exec(`UPDATE operators SET active = ? WHERE username = ?`, active, username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// OperatorCount returns the total number of operators.
func (s *Store) OperatorCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM operators`).Scan(&count)
	return count, err
}
