package results

// store.go is the pgx-backed persistence for the pipeline. The import path
// runs inside one transaction: every upsert for the batch plus the
// placement recalculation commit together or not at all.

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence surface the pipeline needs. *PgStore is the
// production implementation; tests substitute an in-memory fake.
type Store interface {
	RunExists(ctx context.Context, runID int64) (bool, error)
	RegistrationsForRun(ctx context.Context, runID int64) ([]Registration, error)
	ResultsForRun(ctx context.Context, runID int64) ([]Result, error)
	ResultsWithDetails(ctx context.Context, runID int64) ([]ResultDetail, error)

	// ImportBatch upserts one result per valid row keyed on
	// (run, registration) and recomputes placements for the run, all in
	// one transaction. Returns the number of rows written.
	ImportBatch(ctx context.Context, runID int64, rows []ValidRow) (int, error)

	// RecalculatePlacements recomputes and stores placements for the run.
	RecalculatePlacements(ctx context.Context, runID int64) error
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PgStore implements Store over a pgx connection pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Store backed by the pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) RunExists(ctx context.Context, runID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM runs WHERE id = $1)", runID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check run: %w", err)
	}
	return exists, nil
}

func (s *PgStore) RegistrationsForRun(ctx context.Context, runID int64) ([]Registration, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, run_id, category_id, COALESCE(bib_number, 0), first_name, last_name
		FROM registrations
		WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		var r Registration
		if err := rows.Scan(&r.ID, &r.RunID, &r.CategoryID, &r.Bib, &r.FirstName, &r.LastName); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, r)
	}
	return regs, rows.Err()
}

func (s *PgStore) ResultsForRun(ctx context.Context, runID int64) ([]Result, error) {
	return resultsForRun(ctx, s.pool, runID)
}

// resultsForRun loads the run's results with the registration's category
// joined in. Finish times are stored as "HH:MM:SS" text; rows whose text
// does not parse are treated as having no time.
func resultsForRun(ctx context.Context, db dbtx, runID int64) ([]Result, error) {
	rows, err := db.Query(ctx, `
		SELECT r.id, r.run_id, r.registration_id, reg.category_id,
		       r.finish_time, r.status, r.overall_place, r.category_place
		FROM results r
		JOIN registrations reg ON reg.id = r.registration_id
		WHERE r.run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var finishTime *string
		var status string
		if err := rows.Scan(&r.ID, &r.RunID, &r.RegistrationID, &r.CategoryID,
			&finishTime, &status, &r.OverallPlace, &r.CategoryPlace); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Status = Status(status)
		if finishTime != nil {
			if secs, ok := ParseFinishTime(*finishTime); ok {
				r.FinishSeconds = &secs
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PgStore) ImportBatch(ctx context.Context, runID int64, valid []ValidRow) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	imported := 0
	for _, v := range valid {
		var finishTime *string
		if v.FinishSeconds != nil {
			ft := FormatFinishTime(*v.FinishSeconds)
			finishTime = &ft
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO results (run_id, registration_id, finish_time, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (run_id, registration_id)
			DO UPDATE SET finish_time = EXCLUDED.finish_time, status = EXCLUDED.status`,
			runID, v.RegistrationID, finishTime, string(v.Status))
		if err != nil {
			return 0, fmt.Errorf("upsert result (registration %d): %w", v.RegistrationID, err)
		}
		imported++
	}

	if err := recalcInTx(ctx, tx, runID); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return imported, nil
}

func (s *PgStore) RecalculatePlacements(ctx context.Context, runID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin recalculation: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := recalcInTx(ctx, tx, runID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// recalcInTx recomputes placements from the full persisted result set and
// writes the assignments, inside the caller's transaction.
func recalcInTx(ctx context.Context, tx pgx.Tx, runID int64) error {
	rs, err := resultsForRun(ctx, tx, runID)
	if err != nil {
		return err
	}

	for _, p := range ComputePlacements(rs) {
		_, err := tx.Exec(ctx,
			"UPDATE results SET overall_place = $1, category_place = $2 WHERE id = $3",
			p.OverallPlace, p.CategoryPlace, p.ResultID)
		if err != nil {
			return fmt.Errorf("apply placement (result %d): %w", p.ResultID, err)
		}
	}
	return nil
}

func (s *PgStore) ResultsWithDetails(ctx context.Context, runID int64) ([]ResultDetail, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.run_id, r.registration_id, reg.category_id,
		       r.finish_time, r.status, r.overall_place, r.category_place,
		       COALESCE(reg.bib_number, 0),
		       TRIM(reg.first_name || ' ' || reg.last_name),
		       COALESCE(c.name, '')
		FROM results r
		JOIN registrations reg ON reg.id = r.registration_id
		LEFT JOIN categories c ON c.id = reg.category_id
		WHERE r.run_id = $1
		ORDER BY r.overall_place ASC NULLS LAST, reg.bib_number ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("load result details: %w", err)
	}
	defer rows.Close()

	var out []ResultDetail
	for rows.Next() {
		var d ResultDetail
		var finishTime *string
		var status string
		if err := rows.Scan(&d.ID, &d.RunID, &d.RegistrationID, &d.CategoryID,
			&finishTime, &status, &d.OverallPlace, &d.CategoryPlace,
			&d.Bib, &d.Name, &d.CategoryName); err != nil {
			return nil, fmt.Errorf("scan result detail: %w", err)
		}
		d.Status = Status(status)
		if finishTime != nil {
			if secs, ok := ParseFinishTime(*finishTime); ok {
				d.FinishSeconds = &secs
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
