package results

// placement.go derives rankings from persisted results. The computation is
// a pure function of the full result set for a run: it is re-run in total
// after every import or manual edit, never patched incrementally, so
// invoking it again on the same data always yields the same assignment.

import "sort"

// Placement is one computed ranking assignment.
type Placement struct {
	ResultID      int64
	OverallPlace  *int
	CategoryPlace *int
}

// ComputePlacements assigns 1-based placements to finishers, ordered by
// finish time ascending: one overall ranking across the run and one per
// category. DNF/DNS/DSQ results and finishers without a parsed time get
// nil placements. Ties break on registration id to keep the output
// deterministic.
func ComputePlacements(rs []Result) []Placement {
	placements := make([]Placement, 0, len(rs))

	var finishers []Result
	for _, r := range rs {
		if r.Status == StatusFinished && r.FinishSeconds != nil {
			finishers = append(finishers, r)
		} else {
			placements = append(placements, Placement{ResultID: r.ID})
		}
	}

	sort.Slice(finishers, func(i, j int) bool {
		if *finishers[i].FinishSeconds != *finishers[j].FinishSeconds {
			return *finishers[i].FinishSeconds < *finishers[j].FinishSeconds
		}
		return finishers[i].RegistrationID < finishers[j].RegistrationID
	})

	categoryCounts := make(map[int64]int)
	for i, r := range finishers {
		overall := i + 1
		p := Placement{ResultID: r.ID, OverallPlace: &overall}

		if r.CategoryID != nil {
			categoryCounts[*r.CategoryID]++
			place := categoryCounts[*r.CategoryID]
			p.CategoryPlace = &place
		}

		placements = append(placements, p)
	}

	return placements
}
