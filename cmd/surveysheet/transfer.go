package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	appI18n "github.com/pavelanni/surveysheet/internal/i18n"
	"github.com/pavelanni/surveysheet/internal/importer"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/sheet"
	"github.com/pavelanni/surveysheet/internal/structure"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a survey structure to a spreadsheet",
		RunE:  runExport,
	}
	f := cmd.Flags()
	commonFlags(f)
	f.Int64P("survey", "s", 0, "Survey ID (required)")
	f.StringP("kind", "k", string(model.KindQuestions), "What to export (questions, relevances, quotas)")
	f.StringP("output", "o", "", "Output file; its extension picks the format (default: a new file in --export-dir)")
	f.String("export-dir", ".", "Directory for generated file names")
	f.String("format", string(sheet.FormatXLSX), "Format of generated file names (xlsx, csv)")

	_ = cmd.MarkFlagRequired("survey")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a survey structure from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	f := cmd.Flags()
	commonFlags(f)
	f.Int64P("survey", "s", 0, "Survey ID (required)")
	f.StringP("kind", "k", string(model.KindQuestions), "What the file holds (questions, relevances, quotas)")
	f.Bool("strict", false, "Abort on save failures and unreadable attribute blobs")
	f.Bool("clear", false, "Delete the existing structure first (inactive surveys only)")

	_ = cmd.MarkFlagRequired("survey")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	v, db, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	kind, err := model.ParseExportKind(v.GetString("kind"))
	if err != nil {
		return err
	}
	surveyID := v.GetInt64("survey")
	svc := structure.New(db, structure.Config{
		ExportDir: v.GetString("export-dir"),
		Format:    sheet.Format(v.GetString("format")),
		Logger:    slog.Default(),
	})

	path := v.GetString("output")
	if path == "" {
		path, err = svc.ExportStructure(ctx, surveyID, kind)
	} else {
		_, err = svc.ExportTo(ctx, surveyID, kind, path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), appI18n.Td(ctx, "ExportDone", map[string]any{
		"Kind":   kind,
		"Survey": surveyID,
		"Path":   path,
	}))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	v, db, ctx, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	kind, err := model.ParseExportKind(v.GetString("kind"))
	if err != nil {
		return err
	}
	svc := structure.New(db, structure.Config{Logger: slog.Default()})
	res, err := svc.ImportStructure(v.GetInt64("survey"), kind, args[0], importer.Options{
		ClearExisting: v.GetBool("clear"),
		Strict:        v.GetBool("strict"),
	})

	out := cmd.OutOrStdout()
	for _, issue := range append(res.Errors, res.Warnings...) {
		fmt.Fprintf(out, "%s: %s\n", issue.Severity, issue)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, appI18n.Tp(ctx, "RowsProcessed", res.Processed))
	fmt.Fprintln(out, appI18n.Td(ctx, "ImportDone", map[string]any{
		"ID":        res.ImportID,
		"Succeeded": res.Succeeded,
		"Failed":    res.Failed,
	}))
	if res.Failed > 0 {
		return fmt.Errorf("%d row(s) failed", res.Failed)
	}
	return nil
}
