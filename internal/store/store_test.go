package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/pavelanni/surveysheet/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestSurvey(t *testing.T, s *Store, langs ...string) int64 {
	t.Helper()
	id, err := s.CreateSurvey(model.Survey{Title: "Test survey", Languages: langs})
	if err != nil {
		t.Fatalf("createTestSurvey: %v", err)
	}
	return id
}

func TestSurveyCRUD(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSurvey(1)
	if err != nil {
		t.Fatalf("GetSurvey: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil survey, got %+v", got)
	}

	if _, err := s.CreateSurvey(model.Survey{Title: "no languages"}); err == nil {
		t.Error("expected error for survey without languages")
	}

	id := createTestSurvey(t, s, "en", "de")
	got, err = s.GetSurvey(id)
	if err != nil {
		t.Fatalf("GetSurvey: %v", err)
	}
	if got.BaseLanguage() != "en" || len(got.Languages) != 2 {
		t.Errorf("languages = %v", got.Languages)
	}
	if got.Active || got.ImportUnknownAttributes {
		t.Errorf("flags should default to false: %+v", got)
	}

	if err := s.SetSurveyActive(id, true); err != nil {
		t.Fatalf("SetSurveyActive: %v", err)
	}
	if err := s.SetImportUnknownAttributes(id, true); err != nil {
		t.Fatalf("SetImportUnknownAttributes: %v", err)
	}
	if err := s.SetSurveyLanguages(id, []string{"de", "en", "fr"}); err != nil {
		t.Fatalf("SetSurveyLanguages: %v", err)
	}
	got, _ = s.GetSurvey(id)
	if !got.Active || !got.ImportUnknownAttributes || got.BaseLanguage() != "de" {
		t.Errorf("after update: %+v", got)
	}

	if err := s.SetSurveyActive(999, true); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("SetSurveyActive(999) = %v, want ErrNoRows", err)
	}

	list, err := s.ListSurveys()
	if err != nil {
		t.Fatalf("ListSurveys: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 survey, got %d", len(list))
	}
}

func TestGroupsAndQuestions(t *testing.T) {
	s := newTestStore(t)
	sid := createTestSurvey(t, s, "en", "de")

	g := model.Group{SurveyID: sid, Code: "G1", Relevance: "1", Order: 1}
	if err := s.SaveGroup(&g); err != nil {
		t.Fatalf("SaveGroup: %v", err)
	}
	if g.ID == 0 {
		t.Fatal("SaveGroup did not set ID")
	}
	if err := s.SaveGroupL10n(g.ID, "en", model.GroupL10n{Name: "First"}); err != nil {
		t.Fatalf("SaveGroupL10n: %v", err)
	}
	if err := s.SaveGroupL10n(g.ID, "en", model.GroupL10n{Name: "First group", Description: "d"}); err != nil {
		t.Fatalf("SaveGroupL10n update: %v", err)
	}

	groups, err := s.ListGroups(sid)
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != g.ID || groups[0].L10ns["en"].Name != "First group" || groups[0].L10ns["en"].Description != "d" {
		t.Errorf("ListGroups = %+v", groups)
	}

	q := model.Question{SurveyID: sid, GroupID: g.ID, Title: "Q1", Type: model.TypeArray, Relevance: "1", Mandatory: "Y", Order: 1}
	if err := s.SaveQuestion(&q); err != nil {
		t.Fatalf("SaveQuestion: %v", err)
	}
	sq := model.Question{SurveyID: sid, GroupID: g.ID, ParentID: q.ID, Title: "SQ1", Type: model.TypeArray, Relevance: "1", Mandatory: "N", Order: 1}
	if err := s.SaveQuestion(&sq); err != nil {
		t.Fatalf("SaveQuestion(sub): %v", err)
	}
	if err := s.SaveQuestionL10n(q.ID, "de", model.QuestionL10n{Text: "Frage", Help: "Hilfe", Script: "x()"}); err != nil {
		t.Fatalf("SaveQuestionL10n: %v", err)
	}

	dup := model.Question{SurveyID: sid, GroupID: g.ID, Title: "Q1", Type: model.TypeList}
	if err := s.SaveQuestion(&dup); err == nil {
		t.Error("expected unique violation for duplicate top-level title")
	}

	q.Mandatory = "N"
	q.SameScript = true
	if err := s.SaveQuestion(&q); err != nil {
		t.Fatalf("SaveQuestion update: %v", err)
	}

	questions, err := s.ListQuestions(sid)
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	top := questions[0]
	if top.Title != "Q1" || top.L10ns["de"].Script != "x()" {
		t.Errorf("first question = %+v", top)
	}
	if top.Mandatory != "N" || !top.SameScript || top.Type != model.TypeArray {
		t.Errorf("updated question = %+v", top)
	}
	if !questions[1].IsSubquestion() {
		t.Errorf("second question should be a sub-question: %+v", questions[1])
	}
}

func TestAnswersAndAttributes(t *testing.T) {
	s := newTestStore(t)
	sid := createTestSurvey(t, s, "en")
	g := model.Group{SurveyID: sid, Code: "G1"}
	if err := s.SaveGroup(&g); err != nil {
		t.Fatal(err)
	}
	q := model.Question{SurveyID: sid, GroupID: g.ID, Title: "Q1", Type: model.TypeList}
	if err := s.SaveQuestion(&q); err != nil {
		t.Fatal(err)
	}

	a := model.Answer{QuestionID: q.ID, Code: "A1", Order: 1}
	if err := s.SaveAnswer(&a); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if err := s.SaveAnswerL10n(a.ID, "en", model.AnswerL10n{Text: "Yes"}); err != nil {
		t.Fatalf("SaveAnswerL10n: %v", err)
	}
	answers, err := s.ListAnswers(sid)
	if err != nil {
		t.Fatalf("ListAnswers: %v", err)
	}
	if len(answers) != 1 || answers[0].L10ns["en"].Text != "Yes" {
		t.Errorf("ListAnswers = %+v", answers)
	}

	if err := s.SetAttribute(model.Attribute{QuestionID: q.ID, Name: "hidden", Value: "1"}); err != nil {
		t.Fatalf("SetAttribute: %v", err)
	}
	if err := s.SetAttribute(model.Attribute{QuestionID: q.ID, Name: "hidden", Value: "0"}); err != nil {
		t.Fatalf("SetAttribute update: %v", err)
	}
	if err := s.SetAttribute(model.Attribute{QuestionID: q.ID, Name: "other_replace_text", Value: "Else", Language: "en"}); err != nil {
		t.Fatalf("SetAttribute lang: %v", err)
	}
	attrs, err := s.ListAttributes(sid)
	if err != nil {
		t.Fatalf("ListAttributes: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes (upsert, not insert), got %d: %+v", len(attrs), attrs)
	}
	if attrs[0].Name != "hidden" || attrs[0].Value != "0" || !attrs[0].IsGlobal() {
		t.Errorf("hidden = %+v", attrs[0])
	}

	n, err := s.DeleteAttribute(q.ID, "hidden", "")
	if err != nil || n != 1 {
		t.Errorf("DeleteAttribute = %d, %v", n, err)
	}
	n, _ = s.DeleteAttribute(q.ID, "hidden", "")
	if n != 0 {
		t.Errorf("second DeleteAttribute removed %d rows", n)
	}

	removed, err := s.DeleteSurveyContents(sid)
	if err != nil {
		t.Fatalf("DeleteSurveyContents: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed %d entities, want 3", removed)
	}
	attrs, _ = s.ListAttributes(sid)
	if len(attrs) != 0 {
		t.Errorf("attributes left after clear: %+v", attrs)
	}
}

func TestQuotas(t *testing.T) {
	s := newTestStore(t)
	sid := createTestSurvey(t, s, "en")
	g := model.Group{SurveyID: sid, Code: "G1"}
	if err := s.SaveGroup(&g); err != nil {
		t.Fatal(err)
	}
	q := model.Question{SurveyID: sid, GroupID: g.ID, Title: "GENDER", Type: model.TypeGender}
	if err := s.SaveQuestion(&q); err != nil {
		t.Fatal(err)
	}

	quota := model.Quota{SurveyID: sid, Name: "Women", Limit: 100, Action: model.QuotaTerminate, Active: true}
	if err := s.SaveQuota(&quota); err != nil {
		t.Fatalf("SaveQuota: %v", err)
	}
	if err := s.SaveQuotaL10n(quota.ID, "en", model.QuotaL10n{Message: "Sorry"}); err != nil {
		t.Fatalf("SaveQuotaL10n: %v", err)
	}
	m := model.QuotaMember{QuotaID: quota.ID, QuestionID: q.ID, Code: "F"}
	inserted, err := s.SaveQuotaMember(&m)
	if err != nil || !inserted {
		t.Fatalf("SaveQuotaMember = %v, %v", inserted, err)
	}
	again := model.QuotaMember{QuotaID: quota.ID, QuestionID: q.ID, Code: "F"}
	inserted, err = s.SaveQuotaMember(&again)
	if err != nil || inserted {
		t.Errorf("duplicate SaveQuotaMember = %v, %v", inserted, err)
	}

	quotas, err := s.ListQuotas(sid)
	if err != nil {
		t.Fatalf("ListQuotas: %v", err)
	}
	if len(quotas) != 1 || quotas[0].Limit != 100 || quotas[0].L10ns["en"].Message != "Sorry" {
		t.Errorf("ListQuotas = %+v", quotas)
	}
	members, err := s.ListQuotaMembers(sid)
	if err != nil || len(members) != 1 || members[0].Code != "F" {
		t.Errorf("ListQuotaMembers = %+v, %v", members, err)
	}
}

func TestOperators(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateOperator(model.Operator{Username: "ops", PasswordHash: "hash", Active: true}); err != nil {
		t.Fatalf("CreateOperator: %v", err)
	}
	if _, err := s.CreateOperator(model.Operator{Username: "ops", PasswordHash: "other"}); err == nil {
		t.Error("expected unique violation for duplicate username")
	}
	o, err := s.GetOperatorByUsername("ops")
	if err != nil || o == nil || !o.Active || o.PasswordHash != "hash" {
		t.Fatalf("GetOperatorByUsername = %+v, %v", o, err)
	}
	if err := s.SetOperatorActive("ops", false); err != nil {
		t.Fatalf("SetOperatorActive: %v", err)
	}
	o, _ = s.GetOperatorByUsername("ops")
	if o.Active {
		t.Error("operator should be inactive")
	}
	if missing, err := s.GetOperatorByUsername("ghost"); err != nil || missing != nil {
		t.Errorf("GetOperatorByUsername(ghost) = %+v, %v", missing, err)
	}
	count, err := s.OperatorCount()
	if err != nil || count != 1 {
		t.Errorf("OperatorCount = %d, %v", count, err)
	}
}

func TestImportRuns(t *testing.T) {
	s := newTestStore(t)
	sid := createTestSurvey(t, s, "en")

	first := model.ImportResult{ImportID: "a", SurveyID: sid, Kind: model.KindQuestions, Processed: 3, Succeeded: 3, Duration: 1500 * time.Millisecond}
	second := model.ImportResult{ImportID: "b", SurveyID: sid, Kind: model.KindQuestions, Processed: 2, Succeeded: 1, Failed: 1,
		Errors: []model.Issue{{Line: 3, Severity: model.SeverityError, Message: "orphan"}}}
	now := time.Now()
	if err := s.RecordImport(first, now.Add(-time.Minute)); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	if err := s.RecordImport(second, now); err != nil {
		t.Fatalf("RecordImport: %v", err)
	}

	runs, err := s.ListImports(sid, 1)
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if len(runs) != 1 || runs[0].ImportID != "b" {
		t.Fatalf("ListImports(limit 1) = %+v", runs)
	}
	if len(runs[0].Errors) != 1 || runs[0].Errors[0].Line != 3 {
		t.Errorf("errors = %+v", runs[0].Errors)
	}

	runs, _ = s.ListImports(sid, 0)
	if len(runs) != 2 || runs[1].Duration != 1500*time.Millisecond {
		t.Errorf("ListImports(all) = %+v", runs)
	}
}
