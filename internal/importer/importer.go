// Package importer reads a structure file and applies it to a survey. An
// Engine moves through Unprepared, Prepared, Validated, Processing and
// Done; it ends in Failed when the file is structurally broken or a
// strict run hits a save failure.
package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/mapper"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
	"github.com/pavelanni/surveysheet/internal/sheet"
)

// State is a step of the import state machine.
type State int

const (
	Unprepared State = iota
	Prepared
	Validated
	Processing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Unprepared:
		return "unprepared"
	case Prepared:
		return "prepared"
	case Validated:
		return "validated"
	case Processing:
		return "processing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrSurveyActive is returned before any row is touched when a
	// questions import or a bulk clear targets an active survey.
	ErrSurveyActive = errors.New("survey is active; structure changes are not allowed")
	// ErrNoLanguages is a structural failure: no language columns.
	ErrNoLanguages = errors.New("no language columns found in header")
	// ErrStructure means Validate found blocking issues; they are listed
	// in the result.
	ErrStructure = errors.New("file is not a valid structure file")
	// ErrState is returned when a step is called out of order.
	ErrState = errors.New("import step called in wrong state")
)

// Options tune one import run.
type Options struct {
	// ClearExisting deletes the survey's groups, questions and answers
	// before the questions file is applied.
	ClearExisting bool
	// Strict aborts on the first save failure and turns unreadable
	// attribute cells into row errors.
	Strict bool
	// DeleteInput removes the input file once Process has run.
	DeleteInput bool
}

// Store is the persistence an import needs.
type Store interface {
	mapper.Store
	DeleteSurveyContents(surveyID int64) (int64, error)
	RecordImport(res model.ImportResult, finishedAt time.Time) error
}

// Config describes one import run.
type Config struct {
	Survey  model.Survey
	Kind    model.ExportKind
	Path    string
	Options Options
	// Schema and Classifier default to the built-in ones.
	Schema     *attribute.Schema
	Classifier *attribute.Classifier
	Logger     *slog.Logger
}

type decoded struct {
	rec rowcodec.Record
	row any
	err error
}

// Engine runs one import. It is not safe for concurrent use.
type Engine struct {
	store  Store
	cfg    Config
	logger *slog.Logger

	state   State
	result  model.ImportResult
	started time.Time

	header  []string
	records []rowcodec.Record
	langs   []string
	rows    []decoded
}

// New returns an engine in the Unprepared state.
func New(st Store, cfg Config) *Engine {
	if cfg.Schema == nil {
		cfg.Schema = attribute.NewSchema()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = attribute.NewClassifier()
	}
	if cfg.Kind == "" {
		cfg.Kind = model.KindQuestions
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Engine{
		store: st,
		cfg:   cfg,
		logger: logger.With(
			"import_id", id,
			"survey_id", cfg.Survey.ID,
			"kind", string(cfg.Kind),
		),
		result: model.ImportResult{
			ImportID: id,
			SurveyID: cfg.Survey.ID,
			Kind:     cfg.Kind,
			Errors:   []model.Issue{},
			Warnings: []model.Issue{},
		},
	}
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Result returns the counters and issues collected so far.
func (e *Engine) Result() model.ImportResult { return e.result }

// Languages returns the languages found by Validate.
func (e *Engine) Languages() []string { return e.langs }

// Run performs Prepare, Validate and Process.
func (e *Engine) Run() (model.ImportResult, error) {
	if err := e.Prepare(); err != nil {
		return e.result, err
	}
	if err := e.Validate(); err != nil {
		return e.result, err
	}
	return e.Process()
}

func (e *Engine) expect(want State) error {
	if e.state != want {
		return fmt.Errorf("%w: in %s, want %s", ErrState, e.state, want)
	}
	return nil
}

func (e *Engine) transition(to State) {
	e.logger.Debug("import state", "from", e.state.String(), "to", to.String())
	e.state = to
}

// fail moves to Failed and records a file-level issue.
func (e *Engine) fail(err error) error {
	e.result.Errors = append(e.result.Errors, model.Issue{Severity: model.SeverityError, Message: err.Error()})
	e.transition(Failed)
	e.logger.Error("import failed", "error", err)
	return err
}

// Prepare reads the whole first sheet of the input into memory and indexes
// the rows by header name.
func (e *Engine) Prepare() error {
	if err := e.expect(Unprepared); err != nil {
		return err
	}
	e.started = time.Now()

	rows, err := sheet.FirstSheet(e.cfg.Path)
	if err != nil {
		return e.fail(fmt.Errorf("read input: %w", err))
	}
	e.header, e.records = rowcodec.IndexRows(rows)
	if len(e.header) == 0 {
		return e.fail(fmt.Errorf("%w: file is empty", ErrStructure))
	}
	e.transition(Prepared)
	e.logger.Info("import prepared", "rows", len(e.records), "columns", len(e.header))
	return nil
}

// Validate checks the header and classifies every row without touching
// the store. Any structural issue fails the run.
func (e *Engine) Validate() error {
	if err := e.expect(Prepared); err != nil {
		return err
	}

	var issues []model.Issue
	structural := func(line int, format string, args ...any) {
		issues = append(issues, model.Issue{
			Line:     line,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, col := range requiredColumns(e.cfg.Kind) {
		if !containsFold(e.header, col) {
			structural(0, "missing column %q", col)
		}
	}

	switch e.cfg.Kind {
	case model.KindQuestions, model.KindQuotas:
		prefix := "value-"
		if e.cfg.Kind == model.KindQuotas {
			prefix = "message-"
		}
		found := rowcodec.LanguagesFromHeader(e.header, prefix)
		if len(found) == 0 {
			structural(0, "%v (expected %s{language} columns)", ErrNoLanguages, prefix)
		}
		for _, lang := range found {
			canon, ok := e.cfg.Survey.CanonicalLanguage(lang)
			if !ok {
				structural(0, "language %q is not a language of survey %d", lang, e.cfg.Survey.ID)
				continue
			}
			e.langs = append(e.langs, canon)
		}
	default:
		e.langs = e.cfg.Survey.Languages
	}

	codec := rowcodec.NewCodec(rowcodec.NewLayout(e.langs))
	for _, rec := range e.records {
		if rec.IsBlank() {
			continue
		}
		row, err := e.decode(codec, rec)
		if errors.Is(err, rowcodec.ErrUnknownRowType) {
			structural(rec.Line, "%v", err)
			continue
		}
		e.rows = append(e.rows, decoded{rec: rec, row: row, err: err})
	}

	if len(issues) > 0 {
		e.result.Errors = append(e.result.Errors, issues...)
		e.transition(Failed)
		e.logger.Error("import validation failed", "issues", len(issues))
		return fmt.Errorf("%w: %d structural issue(s)", ErrStructure, len(issues))
	}
	e.transition(Validated)
	e.logger.Info("import validated", "rows", len(e.rows), "languages", strings.Join(e.langs, ","))
	return nil
}

func (e *Engine) decode(codec *rowcodec.Codec, rec rowcodec.Record) (any, error) {
	switch e.cfg.Kind {
	case model.KindRelevances:
		return rowcodec.DecodeRelevance(rec)
	case model.KindQuotas:
		return rowcodec.DecodeQuota(rec, e.langs)
	default:
		return codec.Decode(rec)
	}
}

// Process replays the validated rows in file order. Row failures are
// collected and the run continues; previously applied rows stay applied.
func (e *Engine) Process() (model.ImportResult, error) {
	if err := e.expect(Validated); err != nil {
		return e.result, err
	}
	e.transition(Processing)
	if e.cfg.Options.DeleteInput {
		defer e.removeInput()
	}
	defer e.finish()

	if e.cfg.Survey.Active && (e.cfg.Kind == model.KindQuestions || e.cfg.Options.ClearExisting) {
		return e.result, e.fail(ErrSurveyActive)
	}

	if e.cfg.Options.ClearExisting {
		if e.cfg.Kind != model.KindQuestions {
			e.result.Warnings = append(e.result.Warnings, model.Issue{
				Severity: model.SeverityWarning,
				Message:  fmt.Sprintf("clear is ignored for %s files", e.cfg.Kind),
			})
		} else {
			n, err := e.store.DeleteSurveyContents(e.cfg.Survey.ID)
			if err != nil {
				return e.result, e.fail(fmt.Errorf("clear survey: %w", err))
			}
			e.result.Cleared = n
			e.logger.Info("survey structure cleared", "deleted", n)
		}
	}

	session, err := mapper.NewSession(e.store, mapper.Config{
		Survey:     e.cfg.Survey,
		Languages:  e.langs,
		Schema:     e.cfg.Schema,
		Classifier: e.cfg.Classifier,
		Strict:     e.cfg.Options.Strict,
	})
	if err != nil {
		return e.result, e.fail(fmt.Errorf("load survey structure: %w", err))
	}

	for _, d := range e.rows {
		e.result.Processed++
		res, err := e.apply(session, d)
		if err != nil {
			e.result.Failed++
			issue := rowIssue(err, model.SeverityError)
			e.result.Errors = append(e.result.Errors, issue)
			e.logger.Warn("row failed", "line", issue.Line, "code", issue.Code, "error", err)
			if e.cfg.Options.Strict && errors.Is(err, mapper.ErrSaveFailed) {
				e.transition(Failed)
				return e.result, fmt.Errorf("strict import aborted: %w", err)
			}
			continue
		}

		e.result.Succeeded++
		switch res.Change {
		case mapper.Created:
			e.result.Created++
		case mapper.Updated:
			e.result.Updated++
		}
		for _, w := range res.Warnings {
			e.result.Warnings = append(e.result.Warnings, model.Issue{
				Line:     d.rec.Line,
				Kind:     d.rec.Get(rowcodec.ColType),
				Code:     d.rec.Get(rowcodec.ColCode),
				Severity: model.SeverityWarning,
				Message:  w,
			})
		}
		e.logger.Debug("row applied", "line", d.rec.Line, "change", res.Change.String())
	}

	e.transition(Done)
	e.logger.Info("import done",
		"processed", e.result.Processed,
		"succeeded", e.result.Succeeded,
		"failed", e.result.Failed,
		"created", e.result.Created,
		"updated", e.result.Updated,
	)
	return e.result, nil
}

func (e *Engine) apply(s *mapper.Session, d decoded) (mapper.Applied, error) {
	if d.err != nil {
		return mapper.Applied{}, &mapper.RowError{
			Line: d.rec.Line,
			Kind: d.rec.Get(rowcodec.ColType),
			Code: d.rec.Get(rowcodec.ColCode),
			Err:  fmt.Errorf("%w: %v", mapper.ErrInvalidValue, d.err),
		}
	}
	switch r := d.row.(type) {
	case rowcodec.Row:
		return s.Apply(r)
	case rowcodec.RelevanceRow:
		return s.ApplyRelevanceRow(r)
	default:
		return s.ApplyQuotaRow(r)
	}
}

func (e *Engine) finish() {
	e.result.Duration = time.Since(e.started)
	if err := e.store.RecordImport(e.result, time.Now()); err != nil {
		e.logger.Warn("could not record import run", "error", err)
	}
}

func (e *Engine) removeInput() {
	if err := os.Remove(e.cfg.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.logger.Warn("could not delete input file", "path", e.cfg.Path, "error", err)
		return
	}
	e.logger.Debug("input file deleted", "path", e.cfg.Path)
}

// rowIssue converts a row failure into an Issue with its catalogue code.
func rowIssue(err error, sev model.Severity) model.Issue {
	issue := model.Issue{Severity: sev, Message: err.Error(), ErrorCode: mapper.MapError(err).Code}
	var rowErr *mapper.RowError
	if errors.As(err, &rowErr) {
		issue.Line = rowErr.Line
		issue.Kind = rowErr.Kind
		issue.Code = rowErr.Code
		issue.Message = rowErr.Err.Error()
	}
	return issue
}

func requiredColumns(kind model.ExportKind) []string {
	switch kind {
	case model.KindRelevances:
		return rowcodec.RelevanceHeader
	case model.KindQuotas:
		return []string{rowcodec.ColType, rowcodec.ColCode, rowcodec.ColAnswer, rowcodec.ColLimit}
	}
	return []string{rowcodec.ColType, rowcodec.ColCode}
}

func containsFold(header []string, col string) bool {
	for _, h := range header {
		if strings.EqualFold(h, col) {
			return true
		}
	}
	return false
}
