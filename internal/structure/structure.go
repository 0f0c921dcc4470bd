// Package structure is the entry point hosts use to export and import
// survey structures. It resolves surveys, picks file names and runs at
// most one import per survey at a time.
package structure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pavelanni/surveysheet/internal/attribute"
	"github.com/pavelanni/surveysheet/internal/exporter"
	"github.com/pavelanni/surveysheet/internal/importer"
	"github.com/pavelanni/surveysheet/internal/model"
	"github.com/pavelanni/surveysheet/internal/sheet"
)

// ErrSurveyNotFound is returned for an unknown survey ID.
var ErrSurveyNotFound = errors.New("survey not found")

// Store is the persistence the service needs.
type Store interface {
	importer.Store
	exporter.Store
	GetSurvey(id int64) (*model.Survey, error)
}

// Config configures a Service.
type Config struct {
	// ExportDir receives files written by ExportStructure.
	ExportDir string
	// Format of exported files; xlsx when empty.
	Format sheet.Format
	Logger *slog.Logger
}

// Service exports and imports survey structures.
type Service struct {
	store      Store
	cfg        Config
	schema     *attribute.Schema
	classifier *attribute.Classifier
	exporter   *exporter.Engine
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New returns a service. The attribute schema and classifier are built
// once here and shared by every run.
func New(st Store, cfg Config) *Service {
	if cfg.Format == "" {
		cfg.Format = sheet.FormatXLSX
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = os.TempDir()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	schema := attribute.NewSchema()
	classifier := attribute.NewClassifier()
	return &Service{
		store:      st,
		cfg:        cfg,
		schema:     schema,
		classifier: classifier,
		exporter:   exporter.New(st, exporter.Config{Schema: schema, Classifier: classifier, Logger: logger}),
		logger:     logger,
		locks:      make(map[int64]*sync.Mutex),
	}
}

func (s *Service) survey(id int64) (model.Survey, error) {
	sv, err := s.store.GetSurvey(id)
	if err != nil {
		return model.Survey{}, fmt.Errorf("load survey %d: %w", id, err)
	}
	if sv == nil {
		return model.Survey{}, fmt.Errorf("%w: %d", ErrSurveyNotFound, id)
	}
	return *sv, nil
}

// lock serialises work on one survey.
func (s *Service) lock(surveyID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[surveyID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[surveyID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// ExportStructure writes kind of surveyID to a new file in the export
// directory and returns its path.
func (s *Service) ExportStructure(ctx context.Context, surveyID int64, kind model.ExportKind) (string, error) {
	name := fmt.Sprintf("survey_%d_%s_%s.%s", surveyID, kind, time.Now().Format("20060102_150405"), s.cfg.Format)
	if err := os.MkdirAll(s.cfg.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.cfg.ExportDir, name)
	if _, err := s.ExportTo(ctx, surveyID, kind, path); err != nil {
		return "", err
	}
	return path, nil
}

// ExportTo writes kind of surveyID to path.
func (s *Service) ExportTo(ctx context.Context, surveyID int64, kind model.ExportKind, path string) (model.ExportStats, error) {
	sv, err := s.survey(surveyID)
	if err != nil {
		return model.ExportStats{Kind: kind}, err
	}
	unlock := s.lock(surveyID)
	defer unlock()
	return s.exporter.Export(ctx, sv, kind, path)
}

// ImportStructure applies the file at path to surveyID. Row failures
// are reported in the result; the error is set only when the run could
// not complete.
func (s *Service) ImportStructure(surveyID int64, kind model.ExportKind, path string, opts importer.Options) (model.ImportResult, error) {
	sv, err := s.survey(surveyID)
	if err != nil {
		return model.ImportResult{SurveyID: surveyID, Kind: kind}, err
	}
	unlock := s.lock(surveyID)
	defer unlock()

	e := importer.New(s.store, importer.Config{
		Survey:     sv,
		Kind:       kind,
		Path:       path,
		Options:    opts,
		Schema:     s.schema,
		Classifier: s.classifier,
		Logger:     s.logger,
	})
	return e.Run()
}
