package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pavelanni/surveysheet/internal/importer"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/sheet"
	"github.com/pavelanni/surveysheet/internal/structure"
)

const maxUpload = 32 << 20

// Store is the persistence the HTTP routes read directly.
type Store interface {
	ListSurveys() ([]model.Survey, error)
	ListImports(surveyID int64, limit int) ([]model.ImportRun, error)
	CreateOperator(o model.Operator) (int64, error)
	GetOperatorByUsername(username string) (*model.Operator, error)
	ListOperators() ([]model.Operator, error)
	SetOperatorActive(username string, active bool) error
}

// Config configures the HTTP routes.
type Config struct {
	// AdminPassword authenticates the built-in "admin" operator. Empty
	// disables it.
	AdminPassword string
	// WorkDir holds uploads and downloads while a request is served.
	WorkDir string
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc    *structure.Service
	store  Store
	config Config
}

// New creates a new Handler.
func New(svc *structure.Service, s Store, cfg Config) *Handler {
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	return &Handler{svc: svc, store: s, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(h.requireAuth)
	r.Get("/surveys", h.handleListSurveys)
	r.Get("/surveys/{surveyID}/imports", h.handleListImports)
	r.Get("/surveys/{surveyID}/export/{kind}", h.handleExport)
	r.Post("/surveys/{surveyID}/import/{kind}", h.handleImport)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/admin/operators", h.handleListOperators)
		r.Post("/admin/operators", h.handleCreateOperator)
		r.Post("/admin/operators/{username}/active", h.handleSetOperatorActive)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// target parses the survey ID and kind URL parameters.
func target(r *http.Request) (int64, model.ExportKind, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "surveyID"), 10, 64)
	if err != nil {
		return 0, "", errors.New("invalid survey id")
	}
	kind, err := model.ParseExportKind(chi.URLParam(r, "kind"))
	if err != nil {
		return 0, "", err
	}
	return id, kind, nil
}

func (h *Handler) handleListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.store.ListSurveys()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if surveys == nil {
		surveys = []model.Survey{}
	}
	writeJSON(w, http.StatusOK, surveys)
}

func (h *Handler) handleListImports(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "surveyID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid survey id", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.store.ListImports(id, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []model.ImportRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	id, kind, err := target(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := sheet.FormatXLSX
	if f := r.URL.Query().Get("format"); f != "" {
		format = sheet.Format(strings.ToLower(f))
	}
	switch format {
	case sheet.FormatXLSX, sheet.FormatCSV:
	default:
		http.Error(w, fmt.Sprintf("unsupported format %q", r.URL.Query().Get("format")), http.StatusBadRequest)
		return
	}
	name := fmt.Sprintf("survey_%d_%s.%s", id, kind, format)

	path := filepath.Join(h.config.WorkDir, uuid.NewString()+"."+string(format))
	defer os.Remove(path)
	if _, err := h.svc.ExportTo(r.Context(), id, kind, path); err != nil {
		if errors.Is(err, structure.ErrSurveyNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("export failed", "survey_id", id, "kind", string(kind), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	id, kind, err := target(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	format, err := sheet.FormatOf(header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path := filepath.Join(h.config.WorkDir, uuid.NewString()+"."+string(format))
	if err := saveUpload(file, path); err != nil {
		slog.Error("failed to store upload", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	// Only Process removes the input; earlier failures leave it behind.
	defer os.Remove(path)

	opts := importer.Options{
		ClearExisting: formBool(r, "clear"),
		Strict:        formBool(r, "strict"),
		DeleteInput:   true,
	}
	res, err := h.svc.ImportStructure(id, kind, path, opts)
	switch {
	case err == nil:
		slog.Info("imported via http", "survey_id", id, "kind", string(kind), "filename", header.Filename,
			"succeeded", res.Succeeded, "failed", res.Failed)
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, structure.ErrSurveyNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, importer.ErrSurveyActive):
		writeJSON(w, http.StatusConflict, res)
	case errors.Is(err, importer.ErrStructure), errors.Is(err, sheet.ErrUnsupportedFormat):
		writeJSON(w, http.StatusUnprocessableEntity, res)
	default:
		slog.Error("import failed", "survey_id", id, "kind", string(kind), "error", err)
		writeJSON(w, http.StatusInternalServerError, res)
	}
}

func saveUpload(src io.Reader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func formBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.FormValue(key))
	return b
}
