package results

// service.go orchestrates the pipeline actions exposed to the admin panel.
//
// Import and recalculation for the same run are serialized through a
// per-run lock: the upsert keys already prevent duplicate rows, but an
// interleaved recalculation could otherwise read a half-imported batch and
// persist placements computed from it.

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/racedesk/racedesk/internal/logging"
)

// ErrRunNotFound is returned when the target run does not exist.
// This is a structural failure: the whole operation aborts.
var ErrRunNotFound = errors.New("run not found")

// Service exposes the admin actions of the results pipeline.
type Service struct {
	store Store

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a results service over the store.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		locks: make(map[int64]*sync.Mutex),
	}
}

// runLock returns the mutex serializing writes for one run.
func (s *Service) runLock(runID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[runID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[runID] = l
	}
	return l
}

// ParseAndValidateCSV is the dry-run: parse, match against the run's
// registrations and report both lists without persisting anything.
// Safe to call any number of times before committing an import.
func (s *Service) ParseAndValidateCSV(ctx context.Context, content []byte, runID int64) (Report, error) {
	if err := s.checkRun(ctx, runID); err != nil {
		return Report{}, err
	}

	regs, err := s.store.RegistrationsForRun(ctx, runID)
	if err != nil {
		return Report{}, err
	}

	return ParseAndValidate(content, regs)
}

// ImportCSV re-parses and re-validates the content (no state is shared
// with a previous dry-run), persists one result per valid row using
// upsert-by-(run, registration) semantics, and recomputes placements, all
// inside one transaction. Row-level errors are reported, not fatal.
func (s *Service) ImportCSV(ctx context.Context, content []byte, runID int64) (ImportSummary, error) {
	lock := s.runLock(runID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.checkRun(ctx, runID); err != nil {
		return ImportSummary{}, err
	}

	regs, err := s.store.RegistrationsForRun(ctx, runID)
	if err != nil {
		return ImportSummary{}, err
	}

	report, err := ParseAndValidate(content, regs)
	if err != nil {
		return ImportSummary{}, err
	}

	importID := uuid.NewString()
	logger := logging.WithFields(ctx, "import_id", importID, "run_id", runID)

	imported, err := s.store.ImportBatch(ctx, runID, report.Valid)
	if err != nil {
		logger.Error("import failed", "error", err)
		return ImportSummary{}, err
	}

	logger.Info("results imported",
		"total_rows", report.TotalRows,
		"imported", imported,
		"errors", len(report.Errors),
	)

	return ImportSummary{
		ImportID:  importID,
		TotalRows: report.TotalRows,
		Imported:  imported,
		Skipped:   len(report.Errors),
		Valid:     report.Valid,
		Errors:    report.Errors,
	}, nil
}

// Recalculate recomputes placements for the run from its persisted
// results. Always safe to invoke, e.g. after a manual result edit.
func (s *Service) Recalculate(ctx context.Context, runID int64) error {
	lock := s.runLock(runID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.checkRun(ctx, runID); err != nil {
		return err
	}

	return s.store.RecalculatePlacements(ctx, runID)
}

// Preview returns the run's results joined with participant details,
// reflecting the latest placement computation.
func (s *Service) Preview(ctx context.Context, runID int64) ([]ResultDetail, error) {
	if err := s.checkRun(ctx, runID); err != nil {
		return nil, err
	}
	return s.store.ResultsWithDetails(ctx, runID)
}

// Export renders the run's results as CSV. The output re-imports cleanly:
// feeding it back for the same run updates rows in place with no
// validation errors.
func (s *Service) Export(ctx context.Context, runID int64) ([]byte, error) {
	details, err := s.Preview(ctx, runID)
	if err != nil {
		return nil, err
	}
	return writeCSV(details)
}

func (s *Service) checkRun(ctx context.Context, runID int64) error {
	exists, err := s.store.RunExists(ctx, runID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	return nil
}
