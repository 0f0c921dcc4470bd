package model

import (
	"fmt"
	"strings"
	"time"
)

// RowKind is the entity a structure row represents.
type RowKind string

const (
	RowGroup       RowKind = "G"
	RowQuestion    RowKind = "Q"
	RowSubQuestion RowKind = "sq"
	RowAnswer      RowKind = "a"
)

// ParseRowKind maps a type cell to a row kind. Matching is case-insensitive.
func ParseRowKind(s string) (RowKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g":
		return RowGroup, true
	case "q":
		return RowQuestion, true
	case "sq":
		return RowSubQuestion, true
	case "a":
		return RowAnswer, true
	}
	return "", false
}

// ExportKind selects which structure file is produced or consumed.
type ExportKind string

const (
	KindQuestions  ExportKind = "questions"
	KindRelevances ExportKind = "relevances"
	KindQuotas     ExportKind = "quotas"
)

// ParseExportKind validates a kind name.
func ParseExportKind(s string) (ExportKind, error) {
	switch k := ExportKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindQuestions, KindRelevances, KindQuotas:
		return k, nil
	case "":
		return KindQuestions, nil
	}
	return "", fmt.Errorf("unknown structure kind %q (want questions, relevances or quotas)", s)
}

// Severity separates blocking issues from informational ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a problem found in one row of an import file.
type Issue struct {
	Line     int      `json:"line"`
	Kind     string   `json:"kind,omitempty"`
	Code     string   `json:"code,omitempty"`
	Severity Severity `json:"severity"`
	// ErrorCode is a stable reference such as ROW003.
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Line > 0 {
		fmt.Fprintf(&b, "row %d", i.Line)
	} else {
		b.WriteString("file")
	}
	if i.Kind != "" || i.Code != "" {
		fmt.Fprintf(&b, " (%s %s)", i.Kind, i.Code)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	if i.ErrorCode != "" {
		fmt.Fprintf(&b, " [%s]", i.ErrorCode)
	}
	return b.String()
}

// ImportResult summarises one import run.
type ImportResult struct {
	ImportID  string        `json:"import_id"`
	SurveyID  int64         `json:"survey_id"`
	Kind      ExportKind    `json:"kind"`
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Cleared   int64         `json:"cleared,omitempty"`
	Errors    []Issue       `json:"errors"`
	Warnings  []Issue       `json:"warnings"`
	Duration  time.Duration `json:"duration"`
}

// ExportStats summarises one export run.
type ExportStats struct {
	Kind         ExportKind `json:"kind"`
	Path         string     `json:"path,omitempty"`
	Groups       int        `json:"groups"`
	Questions    int        `json:"questions"`
	Subquestions int        `json:"subquestions"`
	Answers      int        `json:"answers"`
	Quotas       int        `json:"quotas"`
	Rows         int        `json:"rows"`
}
