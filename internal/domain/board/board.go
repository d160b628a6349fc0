// Package board builds the ranked honor board from eligible observers.
package board

import (
	"sort"

	"github.com/fieldops/honorboard/internal/domain/model"
	"github.com/fieldops/honorboard/internal/domain/period"
	"github.com/fieldops/honorboard/internal/domain/scoring"
)

// unknownRegion is shown when an observer references a missing region.
const unknownRegion = "unknown"

// EligibleObservers returns the observers qualifying for the honor board:
// those with at least one approved, non-leave statistic AND at least one
// evaluation in the period-scoped inputs. The result preserves the order
// of the master observer collection. Observers missing either precondition
// are silently excluded; the board is positive-only.
func EligibleObservers(observers []model.Observer, periodStats []model.WeeklyStats, periodEvals []model.Evaluation) []model.Observer {
	withApprovedStats := make(map[string]struct{})
	for _, s := range periodStats {
		if s.Status == model.StatusApproved && !s.IsOnLeave {
			withApprovedStats[s.ObserverID] = struct{}{}
		}
	}
	withEvaluations := make(map[string]struct{})
	for _, e := range periodEvals {
		withEvaluations[e.ObserverID] = struct{}{}
	}

	var eligible []model.Observer
	for _, o := range observers {
		if _, ok := withApprovedStats[o.ID]; !ok {
			continue
		}
		if _, ok := withEvaluations[o.ID]; !ok {
			continue
		}
		eligible = append(eligible, o)
	}
	return eligible
}

// Builder composes period filtering, eligibility resolution and point
// calculation into a ranked honor board. It holds no state between calls;
// every Build recomputes from the inputs.
type Builder struct {
	calc *scoring.Calculator
}

// NewBuilder creates a Builder using the given calculator.
func NewBuilder(calc *scoring.Calculator) *Builder {
	return &Builder{calc: calc}
}

// Build returns a fresh ranked honor board for the period. Entries are
// sorted by total points descending; the sort is stable, so observers
// with equal points keep the relative order of the master collection and
// receive distinct consecutive ranks.
func (b *Builder) Build(observers []model.Observer, regions []model.Region, stats []model.WeeklyStats, evals []model.Evaluation, p period.Period) []model.HonorBoardEntry {
	periodStats := period.FilterStats(stats, p)
	periodEvals := period.FilterEvaluations(evals, p)
	eligible := EligibleObservers(observers, periodStats, periodEvals)

	regionNames := make(map[string]string, len(regions))
	for _, r := range regions {
		regionNames[r.ID] = r.Name
	}

	entries := make([]model.HonorBoardEntry, 0, len(eligible))
	for _, observer := range eligible {
		entry := model.HonorBoardEntry{
			ObserverID:   observer.ID,
			ObserverName: observer.Name,
			RegionName:   unknownRegion,
		}
		if name, ok := regionNames[observer.RegionID]; ok {
			entry.RegionName = name
		}

		for _, s := range periodStats {
			if s.ObserverID != observer.ID || s.Status != model.StatusApproved || s.IsOnLeave {
				continue
			}
			entry.VisitsCount += s.VisitsCount
			entry.ViolationsCount += s.ViolationsCount
			entry.WarningsCount += s.WarningsCount
		}

		// The representative evaluation is the first period match in
		// insertion order, even though scoring sums all of them.
		first := true
		for _, e := range periodEvals {
			if e.ObserverID != observer.ID {
				continue
			}
			if first {
				entry.Evaluation = e.Clone()
				first = false
			}
			entry.SupervisorPoints += e.SupervisorPoints
		}

		entry.TotalPoints = b.calc.Points(observer.ID, periodStats, periodEvals)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
