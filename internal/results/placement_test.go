package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placementFor(placements []Placement, resultID int64) Placement {
	for _, p := range placements {
		if p.ResultID == resultID {
			return p
		}
	}
	return Placement{}
}

func TestComputePlacements(t *testing.T) {
	rs := []Result{
		{ID: 1, RegistrationID: 1, CategoryID: int64ptr(1), FinishSeconds: intptr(1200), Status: StatusFinished}, // 20:00
		{ID: 2, RegistrationID: 2, CategoryID: int64ptr(1), FinishSeconds: intptr(1110), Status: StatusFinished}, // 18:30
		{ID: 3, RegistrationID: 3, CategoryID: int64ptr(2), FinishSeconds: intptr(1500), Status: StatusFinished},
		{ID: 4, RegistrationID: 4, CategoryID: int64ptr(1), Status: StatusDNF},
	}

	placements := ComputePlacements(rs)
	require.Len(t, placements, 4)

	fastest := placementFor(placements, 2)
	require.NotNil(t, fastest.OverallPlace)
	assert.Equal(t, 1, *fastest.OverallPlace)
	assert.Equal(t, 1, *fastest.CategoryPlace)

	second := placementFor(placements, 1)
	assert.Equal(t, 2, *second.OverallPlace)
	assert.Equal(t, 2, *second.CategoryPlace)

	// Third overall but first in its own category.
	third := placementFor(placements, 3)
	assert.Equal(t, 3, *third.OverallPlace)
	assert.Equal(t, 1, *third.CategoryPlace)

	dnf := placementFor(placements, 4)
	assert.Nil(t, dnf.OverallPlace)
	assert.Nil(t, dnf.CategoryPlace)
}

func TestComputePlacements_TieBreaksOnRegistrationID(t *testing.T) {
	rs := []Result{
		{ID: 1, RegistrationID: 9, FinishSeconds: intptr(1200), Status: StatusFinished},
		{ID: 2, RegistrationID: 3, FinishSeconds: intptr(1200), Status: StatusFinished},
	}

	placements := ComputePlacements(rs)
	assert.Equal(t, 1, *placementFor(placements, 2).OverallPlace)
	assert.Equal(t, 2, *placementFor(placements, 1).OverallPlace)
}

func TestComputePlacements_FinisherWithoutTimeUnplaced(t *testing.T) {
	rs := []Result{
		{ID: 1, RegistrationID: 1, Status: StatusFinished}, // no parsed time
		{ID: 2, RegistrationID: 2, FinishSeconds: intptr(900), Status: StatusFinished},
	}

	placements := ComputePlacements(rs)
	assert.Nil(t, placementFor(placements, 1).OverallPlace)
	assert.Equal(t, 1, *placementFor(placements, 2).OverallPlace)
}

func TestComputePlacements_Deterministic(t *testing.T) {
	rs := []Result{
		{ID: 1, RegistrationID: 1, CategoryID: int64ptr(1), FinishSeconds: intptr(1300), Status: StatusFinished},
		{ID: 2, RegistrationID: 2, CategoryID: int64ptr(2), FinishSeconds: intptr(1100), Status: StatusFinished},
		{ID: 3, RegistrationID: 3, CategoryID: int64ptr(1), FinishSeconds: intptr(1100), Status: StatusFinished},
		{ID: 4, RegistrationID: 4, Status: StatusDNS},
	}

	first := ComputePlacements(rs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputePlacements(rs))
	}
}

func TestComputePlacements_Empty(t *testing.T) {
	assert.Empty(t, ComputePlacements(nil))
}
