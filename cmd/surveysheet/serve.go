package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pavelanni/surveysheet/internal/handler"
	appI18n "github.com/pavelanni/surveysheet/internal/i18n"
	"github.com/pavelanni/surveysheet/internal/sheet"
	"github.com/pavelanni/surveysheet/internal/structure"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP import/export server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	commonFlags(f)
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("export-dir", "", "Directory for export and upload files (default: system temp dir)")
	f.String("format", string(sheet.FormatXLSX), "Default export format (xlsx, csv)")
	f.String("admin-password", "", "Password of the built-in admin operator (or set SURVEYSHEET_ADMIN_PASSWORD)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	v, db, _, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	password := v.GetString("admin-password")
	if password == "" {
		return errors.New("admin password is required: set --admin-password flag or SURVEYSHEET_ADMIN_PASSWORD env var")
	}

	workDir := v.GetString("export-dir")
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	svc := structure.New(db, structure.Config{
		ExportDir: workDir,
		Format:    sheet.Format(v.GetString("format")),
		Logger:    slog.Default(),
	})
	h := handler.New(svc, db, handler.Config{AdminPassword: password, WorkDir: workDir})

	lang := v.GetString("lang")
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", lang,
		"work_dir", workDir,
	)
	return http.ListenAndServe(addr, r)
}
