package rowcodec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pavelanni/surveysheet/internal/model"
)

// RelevanceHeader is the header of a relevances sheet.
var RelevanceHeader = []string{ColType, ColCode, ColRelevance}

// RelevanceRow sets the relevance of one group or question.
type RelevanceRow struct {
	Line      int
	Kind      model.RowKind
	Code      string
	Relevance string
}

// EncodeRelevance writes one relevances-sheet row.
func EncodeRelevance(kind model.RowKind, code, relevance string) []string {
	return []string{string(kind), code, relevance}
}

// DecodeRelevance reads a relevances-sheet row. Only G and Q rows are
// accepted.
func DecodeRelevance(rec Record) (RelevanceRow, error) {
	kind, ok := model.ParseRowKind(rec.Get(ColType))
	if !ok || (kind != model.RowGroup && kind != model.RowQuestion) {
		return RelevanceRow{}, fmt.Errorf("%w %q", ErrUnknownRowType, rec.Get(ColType))
	}
	return RelevanceRow{
		Line:      rec.Line,
		Kind:      kind,
		Code:      strings.TrimSpace(rec.Get(ColCode)),
		Relevance: rec.Get(ColRelevance),
	}, nil
}

// Quota row kinds.
const (
	QuotaRowQuota  = "Q"
	QuotaRowMember = "QM"
)

// Quota sheet columns.
const (
	ColAnswer      = "answer"
	ColLimit       = "limit"
	ColAction      = "action"
	ColActive      = "active"
	ColAutoloadURL = "autoload_url"
)

// MessageColumn, URLColumn and URLDescriptionColumn name the per-language
// quota columns.
func MessageColumn(lang string) string        { return "message-" + lang }
func URLColumn(lang string) string            { return "url-" + lang }
func URLDescriptionColumn(lang string) string { return "url_description-" + lang }

// QuotaHeader returns the quotas-sheet header for langs.
func QuotaHeader(langs []string) []string {
	h := []string{ColType, ColCode, ColAnswer, ColLimit, ColAction, ColActive, ColAutoloadURL}
	for _, lang := range langs {
		h = append(h, MessageColumn(lang), URLColumn(lang), URLDescriptionColumn(lang))
	}
	return h
}

// QuotaRow is a Q row of a quotas sheet.
type QuotaRow struct {
	Line        int
	Name        string
	Limit       int
	Action      model.QuotaAction
	Active      bool
	AutoloadURL bool
	Texts       map[string]model.QuotaL10n
}

// QuotaMemberRow is a QM row. It belongs to the closest preceding Q row.
type QuotaMemberRow struct {
	Line     int
	Question string
	Answer   string
}

// EncodeQuota writes a Q row.
func EncodeQuota(q model.Quota, langs []string) []string {
	row := []string{
		QuotaRowQuota, q.Name, "",
		strconv.Itoa(q.Limit),
		strconv.Itoa(int(q.Action)),
		formatFlag(q.Active),
		formatFlag(q.AutoloadURL),
	}
	for _, lang := range langs {
		l := q.L10ns[lang]
		row = append(row, l.Message, l.URL, l.URLDescription)
	}
	return row
}

// EncodeQuotaMember writes a QM row.
func EncodeQuotaMember(questionTitle, answerCode string, langs []string) []string {
	row := make([]string, 7+3*len(langs))
	row[0] = QuotaRowMember
	row[1] = questionTitle
	row[2] = answerCode
	return row
}

// DecodeQuota reads a quotas-sheet row as *QuotaRow or *QuotaMemberRow.
func DecodeQuota(rec Record, langs []string) (any, error) {
	switch strings.ToUpper(strings.TrimSpace(rec.Get(ColType))) {
	case QuotaRowQuota:
		limit, err := parseInt(rec.Get(ColLimit), 0)
		if err != nil {
			return nil, fmt.Errorf("limit: %w", err)
		}
		action, err := parseInt(rec.Get(ColAction), int(model.QuotaTerminate))
		if err != nil {
			return nil, fmt.Errorf("action: %w", err)
		}
		if a := model.QuotaAction(action); a != model.QuotaTerminate && a != model.QuotaAllowChange {
			return nil, fmt.Errorf("action %d: must be 1 or 2", action)
		}
		row := &QuotaRow{
			Line:        rec.Line,
			Name:        strings.TrimSpace(rec.Get(ColCode)),
			Limit:       limit,
			Action:      model.QuotaAction(action),
			Active:      parseFlag(rec.Get(ColActive)),
			AutoloadURL: parseFlag(rec.Get(ColAutoloadURL)),
			Texts:       make(map[string]model.QuotaL10n, len(langs)),
		}
		for _, lang := range langs {
			row.Texts[lang] = model.QuotaL10n{
				Message:        rec.Get(MessageColumn(lang)),
				URL:            rec.Get(URLColumn(lang)),
				URLDescription: rec.Get(URLDescriptionColumn(lang)),
			}
		}
		return row, nil
	case QuotaRowMember:
		return &QuotaMemberRow{
			Line:     rec.Line,
			Question: strings.TrimSpace(rec.Get(ColCode)),
			Answer:   strings.TrimSpace(rec.Get(ColAnswer)),
		}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownRowType, rec.Get(ColType))
}

func parseInt(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%d must not be negative", n)
	}
	return n, nil
}
