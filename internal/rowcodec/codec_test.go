package rowcodec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/model"
)

func TestLayoutHeader(t *testing.T) {
	l := NewLayout([]string{"en", "de"})
	want := []string{
		"type", "subtype", "code",
		"value-en", "help-en", "script-en",
		"value-de", "help-de", "script-de",
		"relevance", "mandatory", "same_script", "theme", "options",
		"options-en", "options-de",
	}
	got := l.Header()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Header() = %v\nwant %v", got, want)
	}
	if l.Width() != len(want) {
		t.Errorf("Width() = %d, want %d", l.Width(), len(want))
	}
}

func TestLanguagesFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		prefix string
		want   []string
	}{
		{"two languages", []string{"type", "value-en", "help-en", "value-de-informal"}, "value-", []string{"en", "de-informal"}},
		{"case-insensitive prefix", []string{"VALUE-en", "Value-fr"}, "value-", []string{"en", "fr"}},
		{"duplicates", []string{"value-en", "value-EN"}, "value-", []string{"en"}},
		{"none", []string{"type", "code", "value-"}, "value-", nil},
		{"quota", []string{"type", "message-en", "url-en"}, "message-", []string{"en"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LanguagesFromHeader(tt.header, tt.prefix)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LanguagesFromHeader() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndexRows(t *testing.T) {
	rows := [][]string{
		{"\ufeffType", " Code ", "value-en"},
		{"G", "G1", "Group"},
		{},
		{"Q", "Q1"},
		{"", " ", ""},
		{},
	}
	header, recs := IndexRows(rows)
	if !reflect.DeepEqual(header, []string{"Type", "Code", "value-en"}) {
		t.Errorf("header = %q", header)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3 (trailing blanks dropped)", len(recs))
	}
	if recs[0].Line != 2 || recs[2].Line != 4 {
		t.Errorf("lines = %d, %d; want 2, 4", recs[0].Line, recs[2].Line)
	}
	if got := recs[0].Get("TYPE"); got != "G" {
		t.Errorf("Get(TYPE) = %q", got)
	}
	if !recs[1].IsBlank() {
		t.Error("middle blank row should be blank")
	}
	if got := recs[2].Get("value-en"); got != "" || !recs[2].Has("value-en") {
		t.Errorf("short row value-en = %q, has = %v", got, recs[2].Has("value-en"))
	}
	if recs[2].Has("options") {
		t.Error("Has(options) on sheet without that column")
	}
}

func record(layout Layout, line int, cells map[string]string) Record {
	header := layout.Header()
	row := make([]string, len(header))
	for i, h := range header {
		row[i] = cells[h]
	}
	return NewRecord(line, header, row)
}

func TestDecodeBasicQuestion(t *testing.T) {
	c := NewCodec(NewLayout([]string{"en"}))
	row, err := c.Decode(record(c.Layout(), 3, map[string]string{
		"type": "q", "subtype": "L", "code": "TestQ1",
		"value-en": "Test Question", "relevance": "1", "mandatory": "N",
		"options": `{"hidden":"1"}`,
	}))
	if err != nil {
		t.Fatal(err)
	}
	q, ok := row.(QuestionRow)
	if !ok {
		t.Fatalf("row is %T, want QuestionRow", row)
	}
	if q.Code != "TestQ1" || q.Type != model.TypeList || q.Mandatory != "N" || q.LineNumber() != 3 {
		t.Errorf("decoded %+v", q)
	}
	if q.Texts["en"].Value != "Test Question" {
		t.Errorf("value-en = %q", q.Texts["en"].Value)
	}
	if v, ok := q.Attributes.Global.Lookup("hidden"); !ok || v.Text != "1" {
		t.Errorf("hidden = %+v, %v", v, ok)
	}
	if p := q.Attributes.PerLanguage["en"]; p.Status != ParseEmpty {
		t.Errorf("options-en status = %v", p.Status)
	}
}

func TestDecodeRowKinds(t *testing.T) {
	c := NewCodec(NewLayout([]string{"en"}))
	tests := []struct {
		typ  string
		sub  string
		kind model.RowKind
	}{
		{"G", "", model.RowGroup},
		{"g", "", model.RowGroup},
		{"Q", "T", model.RowQuestion},
		{"SQ", "", model.RowSubQuestion},
		{"a", "1", model.RowAnswer},
		{"A", "", model.RowAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			row, err := c.Decode(record(c.Layout(), 2, map[string]string{"type": tt.typ, "subtype": tt.sub, "code": "X"}))
			if err != nil {
				t.Fatal(err)
			}
			if row.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", row.Kind(), tt.kind)
			}
		})
	}

	_, err := c.Decode(record(c.Layout(), 2, map[string]string{"type": "X"}))
	if !errors.Is(err, ErrUnknownRowType) {
		t.Errorf("Decode(X) = %v, want ErrUnknownRowType", err)
	}
	_, err = c.Decode(record(c.Layout(), 2, map[string]string{"type": "a", "subtype": "7"}))
	if err == nil {
		t.Error("answer scale 7 should fail")
	}
}

func TestEncodeQuestionAttributes(t *testing.T) {
	layout := NewLayout([]string{"en", "de"})
	e := NewEncoder(layout, attribute.NewSchema())

	q := model.Question{
		Title: "Q1", Type: model.TypeShortText, Mandatory: "Y", Relevance: "1",
		L10ns: map[string]model.QuestionL10n{
			"en": {Text: "Name?", Help: "Full name"},
			"de": {Text: "Name?"},
		},
	}
	attrs := []model.Attribute{
		{Name: "maximum_chars", Value: "40"},
		{Name: "hidden", Value: "1"},
		// default value
		{Name: "cssclass", Value: ""},
		// not an attribute of S
		{Name: "answer_order", Value: "random"},
		{Name: "prefix", Value: "Mr", Language: "en"},
		{Name: "prefix", Value: "Herr", Language: "de"},
		// language-specific name stored without a language stays global
		{Name: "suffix", Value: "!"},
		{Name: "mystery", Value: "x"},
	}
	row := e.EncodeQuestion(q, attrs)
	cells := make(map[string]string)
	for i, h := range layout.Header() {
		cells[h] = row[i]
	}

	if cells["type"] != "Q" || cells["subtype"] != "S" || cells["code"] != "Q1" {
		t.Errorf("fixed cells: %v", cells)
	}
	if cells["help-en"] != "Full name" || cells["value-de"] != "Name?" {
		t.Errorf("texts: %v", cells)
	}
	if got := cells["options"]; got != `{"hidden":"1","suffix":"!","maximum_chars":"40"}` {
		t.Errorf("options = %s", got)
	}
	if got := cells["options-en"]; got != `{"prefix":"Mr"}` {
		t.Errorf("options-en = %s", got)
	}
	if got := cells["options-de"]; got != `{"prefix":"Herr"}` {
		t.Errorf("options-de = %s", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	layout := NewLayout([]string{"en"})
	e := NewEncoder(layout, attribute.NewSchema())
	c := NewCodec(layout)

	a := model.Answer{Code: "A2", ScaleID: 1, L10ns: map[string]model.AnswerL10n{"en": {Text: "Two"}}}
	row, err := c.Decode(NewRecord(5, layout.Header(), e.EncodeAnswer(a)))
	if err != nil {
		t.Fatal(err)
	}
	ar, ok := row.(AnswerRow)
	if !ok {
		t.Fatalf("row is %T", row)
	}
	if ar.Code != "A2" || ar.Scale != 1 || ar.Texts["en"].Value != "Two" {
		t.Errorf("answer row %+v", ar)
	}

	g := model.Group{Code: "G1", Relevance: "Q0 == 1", L10ns: map[string]model.GroupL10n{"en": {Name: "One", Description: "First"}}}
	row, err = c.Decode(NewRecord(2, layout.Header(), e.EncodeGroup(g)))
	if err != nil {
		t.Fatal(err)
	}
	gr := row.(GroupRow)
	if gr.Code != "G1" || gr.Relevance != "Q0 == 1" || gr.Texts["en"].Help != "First" {
		t.Errorf("group row %+v", gr)
	}
}

func TestQuotaRows(t *testing.T) {
	langs := []string{"en"}
	header := QuotaHeader(langs)
	q := model.Quota{Name: "Women", Limit: 50, Action: model.QuotaAllowChange, Active: true,
		L10ns: map[string]model.QuotaL10n{"en": {Message: "Full", URL: "https://example.org"}}}

	got, err := DecodeQuota(NewRecord(2, header, EncodeQuota(q, langs)), langs)
	if err != nil {
		t.Fatal(err)
	}
	qr, ok := got.(*QuotaRow)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if qr.Name != "Women" || qr.Limit != 50 || qr.Action != model.QuotaAllowChange || !qr.Active || qr.AutoloadURL {
		t.Errorf("quota row %+v", qr)
	}
	if qr.Texts["en"].URL != "https://example.org" {
		t.Errorf("url-en = %q", qr.Texts["en"].URL)
	}

	got, err = DecodeQuota(NewRecord(3, header, EncodeQuotaMember("GENDER", "F", langs)), langs)
	if err != nil {
		t.Fatal(err)
	}
	if m := got.(*QuotaMemberRow); m.Question != "GENDER" || m.Answer != "F" {
		t.Errorf("member row %+v", m)
	}

	bad := NewRecord(4, header, []string{"Q", "X", "", "lots"})
	if _, err := DecodeQuota(bad, langs); err == nil {
		t.Error("non-numeric limit should fail")
	}
}
