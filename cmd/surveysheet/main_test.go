package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeStructure(t *testing.T, dir string) string {
	t.Helper()
	header := rowcodec.NewLayout([]string{"en", "de"}).Header()
	row := func(cells map[string]string) []string {
		r := make([]string, len(header))
		for i, h := range header {
			r[i] = cells[h]
		}
		return r
	}
	path := filepath.Join(dir, "structure.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	w := csv.NewWriter(f)
	err = w.WriteAll([][]string{
		header,
		row(map[string]string{"type": "G", "code": "G1", "value-en": "Group", "value-de": "Gruppe"}),
		row(map[string]string{"type": "Q", "subtype": "L", "code": "Colour", "value-en": "Colour?", "value-de": "Farbe?"}),
		row(map[string]string{"type": "a", "code": "R", "value-en": "Red", "value-de": "Rot"}),
	})
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}
	return path
}

func TestCLIRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")

	out, err := run(t, "survey", "create", "--db", db, "--title", "CLI", "--languages", "en,de")
	if err != nil {
		t.Fatalf("survey create: %v\n%s", err, out)
	}
	var sv model.Survey
	if err := json.Unmarshal([]byte(out), &sv); err != nil {
		t.Fatalf("decode survey: %v\n%s", err, out)
	}
	if sv.ID != 1 || len(sv.Languages) != 2 {
		t.Fatalf("survey = %+v", sv)
	}

	out, err = run(t, "import", writeStructure(t, dir), "--db", db, "--survey", "1")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "3 rows processed.") || !strings.Contains(out, "3 succeeded, 0 failed") {
		t.Errorf("import output = %q", out)
	}

	xlsx := filepath.Join(dir, "out.xlsx")
	out, err = run(t, "export", "--db", db, "--survey", "1", "--output", xlsx)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Exported questions of survey 1") {
		t.Errorf("export output = %q", out)
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("export file: %v", err)
	}

	out, err = run(t, "imports", "--db", db, "--survey", "1")
	if err != nil {
		t.Fatalf("imports: %v\n%s", err, out)
	}
	var runs []model.ImportRun
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Succeeded != 3 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestCLIImportActiveSurvey(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "test.db")

	if out, err := run(t, "survey", "create", "--db", db, "--title", "CLI", "--languages", "en"); err != nil {
		t.Fatalf("survey create: %v\n%s", err, out)
	}
	if out, err := run(t, "survey", "set", "--db", db, "--survey", "1", "--active"); err != nil {
		t.Fatalf("survey set: %v\n%s", err, out)
	}
	if _, err := run(t, "import", writeStructure(t, dir), "--db", db, "--survey", "1"); err == nil {
		t.Fatal("expected import into an active survey to fail")
	}
}

func TestParseLanguages(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr bool
	}{
		{"canonical", []string{"en", " DE "}, []string{"en", "de"}, false},
		{"region", []string{"pt-br"}, []string{"pt-BR"}, false},
		{"duplicate", []string{"en", "EN"}, nil, true},
		{"invalid", []string{"not a tag"}, nil, true},
		{"empty", []string{" "}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLanguages(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
