package results

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store mirroring the upsert and recalculation
// semantics of the database-backed implementation.
type fakeStore struct {
	runs          map[int64]bool
	registrations map[int64][]Registration
	results       map[int64][]Result // keyed by run

	nextID      int64
	importCalls int
	recalcCalls int
	failImports bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		runs:          map[int64]bool{10: true},
		registrations: map[int64][]Registration{10: testRegistrations()},
		results:       make(map[int64][]Result),
		nextID:        1,
	}
}

func (f *fakeStore) RunExists(ctx context.Context, runID int64) (bool, error) {
	return f.runs[runID], nil
}

func (f *fakeStore) RegistrationsForRun(ctx context.Context, runID int64) ([]Registration, error) {
	return f.registrations[runID], nil
}

func (f *fakeStore) ResultsForRun(ctx context.Context, runID int64) ([]Result, error) {
	return f.results[runID], nil
}

func (f *fakeStore) ResultsWithDetails(ctx context.Context, runID int64) ([]ResultDetail, error) {
	regs := make(map[int64]Registration)
	for _, reg := range f.registrations[runID] {
		regs[reg.ID] = reg
	}

	var details []ResultDetail
	for _, r := range f.results[runID] {
		reg := regs[r.RegistrationID]
		details = append(details, ResultDetail{
			Result: r,
			Bib:    reg.Bib,
			Name:   reg.FullName(),
		})
	}
	return details, nil
}

func (f *fakeStore) ImportBatch(ctx context.Context, runID int64, rows []ValidRow) (int, error) {
	f.importCalls++
	if f.failImports {
		return 0, errors.New("boom")
	}

	for _, v := range rows {
		updated := false
		for i, existing := range f.results[runID] {
			if existing.RegistrationID == v.RegistrationID {
				f.results[runID][i].FinishSeconds = v.FinishSeconds
				f.results[runID][i].Status = v.Status
				updated = true
				break
			}
		}
		if !updated {
			f.results[runID] = append(f.results[runID], Result{
				ID:             f.nextID,
				RunID:          runID,
				RegistrationID: v.RegistrationID,
				FinishSeconds:  v.FinishSeconds,
				Status:         v.Status,
			})
			f.nextID++
		}
	}

	return len(rows), f.applyPlacements(runID)
}

func (f *fakeStore) RecalculatePlacements(ctx context.Context, runID int64) error {
	f.recalcCalls++
	return f.applyPlacements(runID)
}

func (f *fakeStore) applyPlacements(runID int64) error {
	placements := ComputePlacements(f.results[runID])
	for _, p := range placements {
		for i := range f.results[runID] {
			if f.results[runID][i].ID == p.ResultID {
				f.results[runID][i].OverallPlace = p.OverallPlace
				f.results[runID][i].CategoryPlace = p.CategoryPlace
			}
		}
	}
	return nil
}

func resultFor(rs []Result, registrationID int64) (Result, bool) {
	for _, r := range rs {
		if r.RegistrationID == registrationID {
			return r, true
		}
	}
	return Result{}, false
}

func TestParseAndValidateCSV_DoesNotPersist(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	report, err := svc.ParseAndValidateCSV(context.Background(), []byte("bib,time\n101,20:00\n999,21:00\n"), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalRows)
	assert.Len(t, report.Valid, 1)
	assert.Len(t, report.Errors, 1)
	assert.Empty(t, store.results[10], "dry run must not write")
	assert.Zero(t, store.importCalls)
}

func TestImportCSV(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	csv := "bib,name,time\n" +
		"102,,18:30\n" +
		"101,,20:00\n" +
		",Carla Ruiz,dnf\n" +
		"999,Nobody,21:00\n"

	summary, err := svc.ImportCSV(context.Background(), []byte(csv), 10)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.ImportID)
	assert.Equal(t, 4, summary.TotalRows)
	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)

	// The summary reports the written rows, not just their count.
	require.Len(t, summary.Valid, 3)
	assert.Equal(t, int64(2), summary.Valid[0].RegistrationID)
	require.Len(t, summary.Errors, 1)

	// Placements were computed in the same batch.
	r2, ok := resultFor(store.results[10], 2)
	require.True(t, ok)
	require.NotNil(t, r2.OverallPlace)
	assert.Equal(t, 1, *r2.OverallPlace)

	r1, _ := resultFor(store.results[10], 1)
	assert.Equal(t, 2, *r1.OverallPlace)

	// Unparsable time imported as DNF, unplaced.
	r3, ok := resultFor(store.results[10], 3)
	require.True(t, ok)
	assert.Equal(t, StatusDNF, r3.Status)
	assert.Nil(t, r3.OverallPlace)
}

func TestImportCSV_ReimportUpdatesInPlace(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.ImportCSV(ctx, []byte("bib,time\n101,20:00\n102,21:00\n"), 10)
	require.NoError(t, err)

	// Corrected times for the same participants.
	_, err = svc.ImportCSV(ctx, []byte("bib,time\n101,22:00\n102,21:00\n"), 10)
	require.NoError(t, err)

	assert.Len(t, store.results[10], 2, "re-import must update, not duplicate")

	r1, _ := resultFor(store.results[10], 1)
	assert.Equal(t, 1320, *r1.FinishSeconds)
	assert.Equal(t, 2, *r1.OverallPlace, "placements follow the corrected times")
}

func TestImportCSV_UnknownRun(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.ImportCSV(context.Background(), []byte("bib,time\n101,20:00\n"), 404)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestImportCSV_StructuralErrorAbortsBeforeWrite(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, err := svc.ImportCSV(context.Background(), []byte("foo,bar\n1,2\n"), 10)
	assert.Error(t, err)
	assert.Zero(t, store.importCalls)
}

func TestImportCSV_StoreFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.failImports = true
	svc := NewService(store)

	_, err := svc.ImportCSV(context.Background(), []byte("bib,time\n101,20:00\n"), 10)
	assert.Error(t, err)
	assert.Empty(t, store.results[10])
}

func TestRecalculate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.ImportCSV(ctx, []byte("bib,time\n101,20:00\n102,21:00\n"), 10)
	require.NoError(t, err)

	// Simulate a manual correction through the admin form.
	r1, _ := resultFor(store.results[10], 1)
	for i := range store.results[10] {
		if store.results[10][i].ID == r1.ID {
			store.results[10][i].FinishSeconds = intptr(5400)
		}
	}

	require.NoError(t, svc.Recalculate(ctx, 10))

	r1, _ = resultFor(store.results[10], 1)
	assert.Equal(t, 2, *r1.OverallPlace)
	assert.Equal(t, 1, store.recalcCalls)
}

func TestExport_RoundTrips(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.ImportCSV(ctx, []byte("bib,time\n101,20:00\n102,18:30\n103,dnf\n"), 10)
	require.NoError(t, err)

	exported, err := svc.Export(ctx, 10)
	require.NoError(t, err)

	// Feeding the export back in yields no errors and changes nothing.
	report, err := svc.ParseAndValidateCSV(ctx, exported, 10)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.Len(t, report.Valid, 3)

	before := len(store.results[10])
	_, err = svc.ImportCSV(ctx, exported, 10)
	require.NoError(t, err)
	assert.Equal(t, before, len(store.results[10]))

	r2, _ := resultFor(store.results[10], 2)
	assert.Equal(t, 1110, *r2.FinishSeconds)
	assert.Equal(t, 1, *r2.OverallPlace)
}
