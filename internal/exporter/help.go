package exporter

import (
	"context"
	"strconv"
	"strings"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/i18n"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/rowcodec"
	"github.com/pavelanni/surveysheet/internal/sheet"
)

// columnHelp maps a questions-sheet column to its help message ID.
// Per-language columns are matched by prefix.
func columnHelp(col string) string {
	switch col {
	case rowcodec.ColType:
		return "HelpColType"
	case rowcodec.ColSubtype:
		return "HelpColSubtype"
	case rowcodec.ColCode:
		return "HelpColCode"
	case rowcodec.ColRelevance:
		return "HelpColRelevance"
	case rowcodec.ColMandatory:
		return "HelpColMandatory"
	case rowcodec.ColSameScript:
		return "HelpColSameScript"
	case rowcodec.ColTheme:
		return "HelpColTheme"
	case rowcodec.ColOptions:
		return "HelpColOptions"
	}
	switch {
	case strings.HasPrefix(col, rowcodec.ValueColumn("")):
		return "HelpColValue"
	case strings.HasPrefix(col, rowcodec.HelpColumn("")):
		return "HelpColHelp"
	case strings.HasPrefix(col, rowcodec.ScriptColumn("")):
		return "HelpColScript"
	case strings.HasPrefix(col, rowcodec.OptionsColumn("")):
		return "HelpColOptionsLang"
	}
	return ""
}

// writeHelp adds the reference sheet: column meanings, question types and
// the attributes each type accepts. It is never read back.
func (e *Engine) writeHelp(ctx context.Context, w sheet.Writer, layout rowcodec.Layout) error {
	if err := w.AddSheet(i18n.T(ctx, "HelpSheet")); err != nil {
		return err
	}
	rows := []struct {
		values []string
		style  sheet.Style
	}{
		{[]string{i18n.T(ctx, "HelpNote")}, sheet.StyleNone},
		{nil, sheet.StyleNone},
		{[]string{i18n.T(ctx, "HelpColumnsTitle")}, sheet.StyleGroup},
		{[]string{i18n.T(ctx, "HelpColumn"), i18n.T(ctx, "HelpMeaning")}, sheet.StyleHeader},
	}
	for _, r := range rows {
		if err := w.AddRow(r.values, r.style); err != nil {
			return err
		}
	}
	for _, col := range layout.Header() {
		if err := w.AddRow([]string{col, i18n.T(ctx, columnHelp(col))}, sheet.StyleNone); err != nil {
			return err
		}
	}

	if err := w.AddRow(nil, sheet.StyleNone); err != nil {
		return err
	}
	if err := w.AddRow([]string{i18n.T(ctx, "HelpTypesTitle")}, sheet.StyleGroup); err != nil {
		return err
	}
	header := []string{
		i18n.T(ctx, "HelpQuestionType"),
		i18n.T(ctx, "HelpTypeName"),
		i18n.T(ctx, "HelpSubquestionAxes"),
		i18n.T(ctx, "HelpAnswerScales"),
	}
	if err := w.AddRow(header, sheet.StyleHeader); err != nil {
		return err
	}
	for _, t := range model.QuestionTypes() {
		row := []string{string(t), t.Name(), strconv.Itoa(t.SubquestionScales()), strconv.Itoa(t.AnswerScales())}
		if err := w.AddRow(row, sheet.StyleNone); err != nil {
			return err
		}
	}

	if err := w.AddRow(nil, sheet.StyleNone); err != nil {
		return err
	}
	if err := w.AddRow([]string{i18n.T(ctx, "HelpAttributesTitle")}, sheet.StyleGroup); err != nil {
		return err
	}
	header = []string{
		i18n.T(ctx, "HelpQuestionType"),
		i18n.T(ctx, "HelpAttribute"),
		i18n.T(ctx, "HelpDefault"),
		i18n.T(ctx, "HelpValueType"),
		i18n.T(ctx, "HelpAllowed"),
		i18n.T(ctx, "HelpStorage"),
		i18n.T(ctx, "HelpCategory"),
		i18n.T(ctx, "HelpDescription"),
	}
	if err := w.AddRow(header, sheet.StyleHeader); err != nil {
		return err
	}
	scopeGlobal, scopeLang := i18n.T(ctx, "HelpScopeGlobal"), i18n.T(ctx, "HelpScopeLanguage")
	for _, t := range model.QuestionTypes() {
		for _, d := range e.schema.AttributesFor(t) {
			scope := scopeGlobal
			if e.classifier.IsLanguageSpecific(d.Name) {
				scope = scopeLang
			}
			row := []string{string(t), d.Name, d.Default, d.Type.String(), allowedValues(d), scope, d.Category, d.Help}
			if err := w.AddRow(row, sheet.StyleNone); err != nil {
				return err
			}
		}
	}
	return nil
}

func allowedValues(d attribute.Descriptor) string {
	switch d.Type {
	case attribute.Switch:
		return "0, 1"
	case attribute.SingleSelect:
		return strings.Join(d.Options, ", ")
	case attribute.Integer:
		lo, hi := "", ""
		if d.Min != nil {
			lo = strconv.Itoa(*d.Min)
		}
		if d.Max != nil {
			hi = strconv.Itoa(*d.Max)
		}
		if lo == "" && hi == "" {
			return ""
		}
		return lo + ".." + hi
	}
	return ""
}
