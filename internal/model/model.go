package model

import (
	"strings"
	"time"
)

// Survey is the root of a structure tree. It is read by the import and
// export engines but never restructured by them.
type Survey struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Languages lists the survey languages; the first entry is the base language.
	Languages []string `json:"languages"`
	Active    bool     `json:"active"`
	// ImportUnknownAttributes allows attribute names absent from the
	// attribute schema to be stored on import.
	ImportUnknownAttributes bool `json:"import_unknown_attributes"`
}

// BaseLanguage returns the first survey language, or "" if none is set.
func (s Survey) BaseLanguage() string {
	if len(s.Languages) == 0 {
		return ""
	}
	return s.Languages[0]
}

// CanonicalLanguage returns the survey's spelling of lang.
func (s Survey) CanonicalLanguage(lang string) (string, bool) {
	for _, l := range s.Languages {
		if strings.EqualFold(l, lang) {
			return l, true
		}
	}
	return "", false
}

// GroupL10n holds the per-language text of a group.
type GroupL10n struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Group is a question group. Code is its business key within the survey.
type Group struct {
	ID        int64                `json:"id"`
	SurveyID  int64                `json:"survey_id"`
	Code      string               `json:"code"`
	Relevance string               `json:"relevance"`
	Order     int                  `json:"order"`
	L10ns     map[string]GroupL10n `json:"l10ns"`
}

// QuestionL10n holds the per-language text of a question or sub-question.
type QuestionL10n struct {
	Text   string `json:"text"`
	Help   string `json:"help"`
	Script string `json:"script"`
}

// Question is a top-level question (ParentID == 0) or a sub-question.
// Title is the business key: unique per survey for top-level questions
// and unique per (parent, scale) for sub-questions.
type Question struct {
	ID         int64                   `json:"id"`
	SurveyID   int64                   `json:"survey_id"`
	GroupID    int64                   `json:"group_id"`
	ParentID   int64                   `json:"parent_id"`
	ScaleID    int                     `json:"scale_id"`
	Title      string                  `json:"title"`
	Type       QuestionType            `json:"type"`
	Relevance  string                  `json:"relevance"`
	Mandatory  string                  `json:"mandatory"`
	SameScript bool                    `json:"same_script"`
	Theme      string                  `json:"theme"`
	Order      int                     `json:"order"`
	L10ns      map[string]QuestionL10n `json:"l10ns"`
}

// IsSubquestion reports whether q hangs below another question.
func (q Question) IsSubquestion() bool {
	return q.ParentID != 0
}

// AnswerL10n holds the per-language text of an answer option.
type AnswerL10n struct {
	Text string `json:"text"`
}

// Answer is an answer option of a question. Code is unique per
// (question, scale).
type Answer struct {
	ID         int64                 `json:"id"`
	QuestionID int64                 `json:"question_id"`
	Code       string                `json:"code"`
	ScaleID    int                   `json:"scale_id"`
	Order      int                   `json:"order"`
	L10ns      map[string]AnswerL10n `json:"l10ns"`
}

// Attribute is a question setting. An empty Language marks a global
// attribute; otherwise the value applies to that language only.
type Attribute struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	Language   string `json:"language,omitempty"`
}

// IsGlobal reports whether the attribute is stored once for all languages.
func (a Attribute) IsGlobal() bool {
	return a.Language == ""
}

// QuotaAction is what happens when a quota is full.
type QuotaAction int

const (
	QuotaTerminate   QuotaAction = 1
	QuotaAllowChange QuotaAction = 2
)

// QuotaL10n holds the per-language texts of a quota.
type QuotaL10n struct {
	Message        string `json:"message"`
	URL            string `json:"url"`
	URLDescription string `json:"url_description"`
}

// Quota limits completed responses matching its members. Name is the
// business key within the survey.
type Quota struct {
	ID          int64                `json:"id"`
	SurveyID    int64                `json:"survey_id"`
	Name        string               `json:"name"`
	Limit       int                  `json:"limit"`
	Action      QuotaAction          `json:"action"`
	Active      bool                 `json:"active"`
	AutoloadURL bool                 `json:"autoload_url"`
	L10ns       map[string]QuotaL10n `json:"l10ns"`
}

// QuotaMember binds a quota to one answer code of a question.
type QuotaMember struct {
	ID         int64  `json:"id"`
	QuotaID    int64  `json:"quota_id"`
	QuestionID int64  `json:"question_id"`
	Code       string `json:"code"`
}

// Operator is an account allowed to use the HTTP import and export routes.
type Operator struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImportRun is the stored summary of a finished import.
type ImportRun struct {
	ImportID   string        `json:"import_id"`
	SurveyID   int64         `json:"survey_id"`
	Kind       ExportKind    `json:"kind"`
	Processed  int           `json:"processed"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Created    int           `json:"created"`
	Updated    int           `json:"updated"`
	Errors     []Issue       `json:"errors"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}
