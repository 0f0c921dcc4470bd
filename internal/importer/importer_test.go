package importer

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/surveysheet/internal/mapper"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
	"github.com/pavelanni/surveysheet/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func createSurvey(t *testing.T, st *store.Store, langs ...string) model.Survey {
	t.Helper()
	id, err := st.CreateSurvey(model.Survey{Title: "Import test", Languages: langs})
	require.NoError(t, err)
	sv, err := st.GetSurvey(id)
	require.NoError(t, err)
	require.NotNil(t, sv)
	return *sv
}

// findQuestion returns the top-level question with title, or nil.
func findQuestion(t *testing.T, st *store.Store, surveyID int64, title string) *model.Question {
	t.Helper()
	questions, err := st.ListQuestions(surveyID)
	require.NoError(t, err)
	for i := range questions {
		if !questions[i].IsSubquestion() && questions[i].Title == title {
			return &questions[i]
		}
	}
	return nil
}

// countStructure returns the number of groups, questions and answers.
func countStructure(t *testing.T, st *store.Store, surveyID int64) []int {
	t.Helper()
	groups, err := st.ListGroups(surveyID)
	require.NoError(t, err)
	questions, err := st.ListQuestions(surveyID)
	require.NoError(t, err)
	answers, err := st.ListAnswers(surveyID)
	require.NoError(t, err)
	return []int{len(groups), len(questions), len(answers)}
}

func writeCSV(t *testing.T, name string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
	return path
}

var questionsHeader = rowcodec.NewLayout([]string{"en"}).Header()

// row builds a questions-sheet row for the single-language layout:
// type, subtype, code, value-en, help-en, script-en, relevance,
// mandatory, same_script, theme, options, options-en.
func row(cells ...string) []string {
	out := make([]string, len(questionsHeader))
	copy(out, cells)
	return out
}

func basicRows() [][]string {
	return [][]string{
		questionsHeader,
		row("G", "", "TestGroup", "Test Group", "", "", "1"),
		row("Q", "L", "TestQ1", "Test Question", "", "", "1", "N", "", "", `{"hidden":"1"}`),
		row("a", "", "A1", "Yes"),
		row("a", "", "A2", "No"),
	}
}

func run(t *testing.T, st *store.Store, sv model.Survey, kind model.ExportKind, path string, opts Options) (*Engine, model.ImportResult, error) {
	t.Helper()
	e := New(st, Config{Survey: sv, Kind: kind, Path: path, Options: opts})
	res, err := e.Run()
	return e, res, err
}

func TestImportBasicScenario(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	path := writeCSV(t, "questions.csv", basicRows())

	e, res, err := run(t, st, sv, model.KindQuestions, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, Done, e.State())
	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 4, res.Created)
	assert.Empty(t, res.Errors)
	assert.NotEmpty(t, res.ImportID)
	assert.Equal(t, []string{"en"}, e.Languages())

	q := findQuestion(t, st, sv.ID, "TestQ1")
	require.NotNil(t, q)
	assert.Equal(t, model.TypeList, q.Type)
	assert.Equal(t, "N", q.Mandatory)

	attrs, err := st.ListAttributes(sv.ID)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "hidden", attrs[0].Name)
	assert.Equal(t, "1", attrs[0].Value)

	runs, err := st.ListImports(sv.ID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.ImportID, runs[0].ImportID)
	assert.Equal(t, 4, runs[0].Succeeded)
}

func TestImportTwiceIsStable(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	path := writeCSV(t, "questions.csv", basicRows())

	_, _, err := run(t, st, sv, model.KindQuestions, path, Options{})
	require.NoError(t, err)
	_, res, err := run(t, st, sv, model.KindQuestions, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, res.Updated)

	assert.Equal(t, []int{1, 1, 2}, countStructure(t, st, sv.ID))
}

func TestImportStructuralFailures(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want string
	}{
		{
			name: "unknown row type",
			rows: [][]string{questionsHeader, row("G", "", "G1"), row("X", "", "Q1")},
			want: "unknown row type",
		},
		{
			name: "no language columns",
			rows: [][]string{{"type", "subtype", "code"}, {"G", "", "G1"}},
			want: ErrNoLanguages.Error(),
		},
		{
			name: "language not in survey",
			rows: [][]string{{"type", "code", "value-fr"}, {"G", "G1", "Groupe"}},
			want: `language "fr"`,
		},
		{
			name: "missing code column",
			rows: [][]string{{"type", "value-en"}, {"G", "Group"}},
			want: `missing column "code"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t)
			sv := createSurvey(t, st, "en")
			path := writeCSV(t, "questions.csv", tt.rows)

			e, res, err := run(t, st, sv, model.KindQuestions, path, Options{DeleteInput: true})
			require.ErrorIs(t, err, ErrStructure)
			assert.Equal(t, Failed, e.State())
			assert.Equal(t, 0, res.Processed)
			require.NotEmpty(t, res.Errors)
			var msgs []string
			for _, is := range res.Errors {
				msgs = append(msgs, is.Message)
			}
			assert.Contains(t, strings.Join(msgs, "; "), tt.want)

			assert.Zero(t, countStructure(t, st, sv.ID)[0])
			assert.FileExists(t, path, "input is kept when Process never ran")
		})
	}
}

func TestImportRowErrorsContinue(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	path := writeCSV(t, "questions.csv", [][]string{
		questionsHeader,
		row("sq", "", "SQ1", "Orphan"),
		row("G", "", "TestGroup", "Test Group"),
		row("Q", "L", "TestQ1", "Test Question"),
		row("a", "7", "A1", "Bad scale"),
		row("a", "", "A1", "Yes"),
	})

	e, res, err := run(t, st, sv, model.KindQuestions, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, Done, e.State())
	assert.Equal(t, 5, res.Processed)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 2)

	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Equal(t, "sq", res.Errors[0].Kind)
	assert.Equal(t, "SQ1", res.Errors[0].Code)
	assert.Equal(t, "ROW001", res.Errors[0].ErrorCode)
	assert.Equal(t, 5, res.Errors[1].Line)
	assert.Equal(t, "ROW008", res.Errors[1].ErrorCode)
}

func TestImportBlankRowsSkipped(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	rows := basicRows()
	rows = append(rows[:2], append([][]string{row()}, rows[2:]...)...)
	rows = append(rows, row(), row())
	path := writeCSV(t, "questions.csv", rows)

	_, res, err := run(t, st, sv, model.KindQuestions, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, 0, res.Failed)
}

func TestImportActiveSurvey(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	require.NoError(t, st.SetSurveyActive(sv.ID, true))
	sv.Active = true
	path := writeCSV(t, "questions.csv", basicRows())

	e, res, err := run(t, st, sv, model.KindQuestions, path, Options{})
	require.ErrorIs(t, err, ErrSurveyActive)
	assert.Equal(t, Failed, e.State())
	assert.Equal(t, 0, res.Processed)

	assert.Zero(t, countStructure(t, st, sv.ID)[0])
}

func TestImportClearExisting(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	_, _, err := run(t, st, sv, model.KindQuestions, writeCSV(t, "first.csv", basicRows()), Options{})
	require.NoError(t, err)

	path := writeCSV(t, "second.csv", [][]string{
		questionsHeader,
		row("G", "", "Other", "Other group"),
		row("Q", "S", "Name", "Your name"),
	})
	_, res, err := run(t, st, sv, model.KindQuestions, path, Options{ClearExisting: true})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Cleared)

	groups, err := st.ListGroups(sv.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Other", groups[0].Code)
	attrs, err := st.ListAttributes(sv.ID)
	require.NoError(t, err)
	assert.Empty(t, attrs)
}

func TestImportDeleteInput(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	path := writeCSV(t, "questions.csv", [][]string{
		questionsHeader,
		row("sq", "", "SQ1", "Orphan"),
	})

	_, res, err := run(t, st, sv, model.KindQuestions, path, Options{DeleteInput: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.NoFileExists(t, path)
}

func TestImportStepOrder(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	e := New(st, Config{Survey: sv, Path: writeCSV(t, "q.csv", basicRows())})

	assert.Equal(t, Unprepared, e.State())
	assert.ErrorIs(t, e.Validate(), ErrState)
	_, err := e.Process()
	assert.ErrorIs(t, err, ErrState)

	require.NoError(t, e.Prepare())
	assert.Equal(t, Prepared, e.State())
	assert.ErrorIs(t, e.Prepare(), ErrState)
	require.NoError(t, e.Validate())
	assert.Equal(t, Validated, e.State())
	_, err = e.Process()
	require.NoError(t, err)
	assert.Equal(t, Done, e.State())
}

func TestImportMissingFile(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	e := New(st, Config{Survey: sv, Path: filepath.Join(t.TempDir(), "missing.xlsx")})

	require.Error(t, e.Prepare())
	assert.Equal(t, Failed, e.State())
}

// failingStore rejects every question save.
type failingStore struct {
	*store.Store
}

func (failingStore) SaveQuestion(*model.Question) error {
	return errors.New("disk full")
}

func TestImportSaveFailure(t *testing.T) {
	rows := [][]string{
		questionsHeader,
		row("G", "", "TestGroup", "Test Group"),
		row("Q", "L", "Q1", "First"),
		row("Q", "L", "Q2", "Second"),
	}

	t.Run("lenient", func(t *testing.T) {
		st := newTestStore(t)
		sv := createSurvey(t, st, "en")
		e := New(failingStore{st}, Config{Survey: sv, Path: writeCSV(t, "q.csv", rows)})
		res, err := e.Run()
		require.NoError(t, err)
		assert.Equal(t, Done, e.State())
		assert.Equal(t, 2, res.Failed)
		assert.Equal(t, "ROW010", res.Errors[0].ErrorCode)
	})

	t.Run("strict", func(t *testing.T) {
		st := newTestStore(t)
		sv := createSurvey(t, st, "en")
		e := New(failingStore{st}, Config{Survey: sv, Path: writeCSV(t, "q.csv", rows), Options: Options{Strict: true}})
		res, err := e.Run()
		require.ErrorIs(t, err, mapper.ErrSaveFailed)
		assert.Equal(t, Failed, e.State())
		assert.Equal(t, 2, res.Processed)
		assert.Equal(t, 1, res.Failed)

		runs, err := st.ListImports(sv.ID, 0)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})
}

func TestImportRelevances(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	_, _, err := run(t, st, sv, model.KindQuestions, writeCSV(t, "q.csv", basicRows()), Options{})
	require.NoError(t, err)

	path := writeCSV(t, "relevances.csv", [][]string{
		rowcodec.RelevanceHeader,
		{"G", "TestGroup", "1"},
		{"Q", "TestQ1", "Q0.NAOK > 2"},
		{"Q", "Missing", "1"},
	})
	_, res, err := run(t, st, sv, model.KindRelevances, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "ROW007", res.Errors[0].ErrorCode)

	q := findQuestion(t, st, sv.ID, "TestQ1")
	require.NotNil(t, q)
	assert.Equal(t, "Q0.NAOK > 2", q.Relevance)
}

func TestImportQuotas(t *testing.T) {
	st := newTestStore(t)
	sv := createSurvey(t, st, "en")
	_, _, err := run(t, st, sv, model.KindQuestions, writeCSV(t, "q.csv", basicRows()), Options{})
	require.NoError(t, err)

	path := writeCSV(t, "quotas.csv", [][]string{
		rowcodec.QuotaHeader([]string{"en"}),
		{"Q", "Yes voters", "", "50", "1", "1", "0", "Quota full", "", ""},
		{"QM", "TestQ1", "A1", "", "", "", "", "", "", ""},
	})
	_, res, err := run(t, st, sv, model.KindQuotas, path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)

	quotas, err := st.ListQuotas(sv.ID)
	require.NoError(t, err)
	require.Len(t, quotas, 1)
	assert.Equal(t, 50, quotas[0].Limit)
	assert.True(t, quotas[0].Active)
	assert.Equal(t, "Quota full", quotas[0].L10ns["en"].Message)

	members, err := st.ListQuotaMembers(sv.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "A1", members[0].Code)
}
