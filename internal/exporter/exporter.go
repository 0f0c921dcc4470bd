// Package exporter writes the structure of a survey to a spreadsheet:
// the questions tree with a help sheet, the relevance conditions, or
// the quotas.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
	"github.com/pavelanni/surveysheet/internal/sheet"
)

// ErrNoLanguages is returned for a survey without languages.
var ErrNoLanguages = errors.New("survey has no languages")

// Config holds the collaborators of an Engine. Nil fields get defaults.
type Config struct {
	Schema     *attribute.Schema
	Classifier *attribute.Classifier
	Logger     *slog.Logger
}

// Engine exports survey structures.
type Engine struct {
	store      Store
	schema     *attribute.Schema
	classifier *attribute.Classifier
	logger     *slog.Logger
}

// New returns an export engine reading from st.
func New(st Store, cfg Config) *Engine {
	e := &Engine{store: st, schema: cfg.Schema, classifier: cfg.Classifier, logger: cfg.Logger}
	if e.schema == nil {
		e.schema = attribute.NewSchema()
	}
	if e.classifier == nil {
		e.classifier = attribute.NewClassifier()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Export writes kind for survey to path. The file format follows the
// extension of path. The help sheet is written in the language of the
// localizer in ctx and only to formats with more than one sheet.
func (e *Engine) Export(ctx context.Context, survey model.Survey, kind model.ExportKind, path string) (model.ExportStats, error) {
	stats := model.ExportStats{Kind: kind, Path: path}
	if len(survey.Languages) == 0 {
		return stats, ErrNoLanguages
	}
	t, err := loadTree(e.store, survey.ID)
	if err != nil {
		return stats, err
	}

	w, err := sheet.OpenForWrite(path)
	if err != nil {
		return stats, fmt.Errorf("create %s: %w", path, err)
	}

	switch kind {
	case model.KindRelevances:
		err = e.writeRelevances(w, t, &stats)
	case model.KindQuotas:
		err = e.writeQuotas(w, survey, t, &stats)
	default:
		err = e.writeQuestions(w, survey, t, &stats)
		if err == nil && w.MultiSheet() {
			err = e.writeHelp(ctx, w, rowcodec.NewLayout(survey.Languages))
		}
	}
	if err != nil {
		w.Close()
		os.Remove(path)
		return stats, fmt.Errorf("export %s: %w", kind, err)
	}
	if err := w.Close(); err != nil {
		return stats, fmt.Errorf("write %s: %w", path, err)
	}

	e.logger.Info("export done",
		"survey_id", survey.ID,
		"kind", string(kind),
		"path", path,
		"rows", stats.Rows,
	)
	return stats, nil
}

func (e *Engine) writeQuestions(w sheet.Writer, survey model.Survey, t *tree, stats *model.ExportStats) error {
	layout := rowcodec.NewLayout(survey.Languages)
	enc := rowcodec.NewEncoder(layout, e.schema)

	if err := w.AddSheet(string(model.KindQuestions)); err != nil {
		return err
	}
	if err := w.AddRow(layout.Header(), sheet.StyleHeader); err != nil {
		return err
	}

	add := func(row []string, style sheet.Style) error {
		stats.Rows++
		return w.AddRow(row, style)
	}

	for _, g := range t.groups {
		if err := add(enc.EncodeGroup(g), sheet.StyleGroup); err != nil {
			return err
		}
		stats.Groups++

		for _, q := range t.questions[g.ID] {
			if err := add(enc.EncodeQuestion(q, t.attrs[q.ID]), sheet.StyleQuestion); err != nil {
				return err
			}
			stats.Questions++

			if q.Type.UsesAnswers() {
				for _, a := range t.answers[q.ID] {
					if err := add(enc.EncodeAnswer(a), sheet.StyleAnswer); err != nil {
						return err
					}
					stats.Answers++
				}
			}
			if q.Type.IsMultiFlex() {
				for _, sq := range t.children[q.ID][1] {
					if err := add(enc.EncodeColumnSubquestion(sq, q.Type, t.attrs[sq.ID]), sheet.StyleAnswer); err != nil {
						return err
					}
					stats.Subquestions++
				}
			}
			if q.Type.UsesSubquestions() {
				for _, sq := range t.children[q.ID][0] {
					if err := add(enc.EncodeSubquestion(sq, q.Type, t.attrs[sq.ID]), sheet.StyleSubQuestion); err != nil {
						return err
					}
					stats.Subquestions++
				}
			}
		}
	}
	return nil
}

func (e *Engine) writeRelevances(w sheet.Writer, t *tree, stats *model.ExportStats) error {
	if err := w.AddSheet(string(model.KindRelevances)); err != nil {
		return err
	}
	if err := w.AddRow(rowcodec.RelevanceHeader, sheet.StyleHeader); err != nil {
		return err
	}
	for _, g := range t.groups {
		if err := w.AddRow(rowcodec.EncodeRelevance(model.RowGroup, g.Code, g.Relevance), sheet.StyleGroup); err != nil {
			return err
		}
		stats.Groups++
		stats.Rows++
		for _, q := range t.questions[g.ID] {
			if err := w.AddRow(rowcodec.EncodeRelevance(model.RowQuestion, q.Title, q.Relevance), sheet.StyleQuestion); err != nil {
				return err
			}
			stats.Questions++
			stats.Rows++
		}
	}
	return nil
}

func (e *Engine) writeQuotas(w sheet.Writer, survey model.Survey, t *tree, stats *model.ExportStats) error {
	quotas, err := e.store.ListQuotas(survey.ID)
	if err != nil {
		return fmt.Errorf("load quotas: %w", err)
	}
	members, err := e.store.ListQuotaMembers(survey.ID)
	if err != nil {
		return fmt.Errorf("load quota members: %w", err)
	}
	byQuota := make(map[int64][]model.QuotaMember)
	for _, m := range members {
		byQuota[m.QuotaID] = append(byQuota[m.QuotaID], m)
	}

	if err := w.AddSheet(string(model.KindQuotas)); err != nil {
		return err
	}
	if err := w.AddRow(rowcodec.QuotaHeader(survey.Languages), sheet.StyleHeader); err != nil {
		return err
	}
	for _, q := range quotas {
		if err := w.AddRow(rowcodec.EncodeQuota(q, survey.Languages), sheet.StyleGroup); err != nil {
			return err
		}
		stats.Quotas++
		stats.Rows++
		for _, m := range byQuota[q.ID] {
			title, ok := t.titles[m.QuestionID]
			if !ok {
				e.logger.Warn("quota member points to a missing question", "quota", q.Name, "question_id", m.QuestionID)
				continue
			}
			if err := w.AddRow(rowcodec.EncodeQuotaMember(title, m.Code, survey.Languages), sheet.StyleNone); err != nil {
				return err
			}
			stats.Rows++
		}
	}
	return nil
}
