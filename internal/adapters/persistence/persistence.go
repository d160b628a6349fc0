// Package persistence defines the write-behind durable storage contract.
//
// The in-memory store is the authority for all reads; durable writes are
// best-effort and applied asynchronously. A failed write is logged and
// counted, never surfaced to the caller that performed the mutation.
package persistence

import (
	"context"

	"github.com/fieldops/honorboard/internal/domain/model"
)

// Kind identifies what a persistence job does.
type Kind string

// Job kinds.
const (
	KindUpsertRegion      Kind = "upsert_region"
	KindUpsertObserver    Kind = "upsert_observer"
	KindDeleteObserver    Kind = "delete_observer"
	KindUpsertStat        Kind = "upsert_stat"
	KindDeleteStat        Kind = "delete_stat"
	KindUpsertEvaluation  Kind = "upsert_evaluation"
	KindDeleteEvaluation  Kind = "delete_evaluation"
	KindUpsertImprovement Kind = "upsert_improvement"
)

// Job is one durable-write unit flowing from the store to a Persister.
// Exactly one payload field matching Kind is set; ID carries the target
// for deletes.
type Job struct {
	Kind        Kind
	ID          string
	Region      *model.Region
	Observer    *model.Observer
	Stat        *model.WeeklyStats
	Evaluation  *model.Evaluation
	Improvement *model.ImprovementItem
}

// Job constructors.

func UpsertRegion(r model.Region) Job { return Job{Kind: KindUpsertRegion, ID: r.ID, Region: &r} }

func UpsertObserver(o model.Observer) Job {
	return Job{Kind: KindUpsertObserver, ID: o.ID, Observer: &o}
}

func DeleteObserver(id string) Job { return Job{Kind: KindDeleteObserver, ID: id} }

func UpsertStat(s model.WeeklyStats) Job { return Job{Kind: KindUpsertStat, ID: s.ID, Stat: &s} }

func DeleteStat(id string) Job { return Job{Kind: KindDeleteStat, ID: id} }

func UpsertEvaluation(e model.Evaluation) Job {
	e = e.Clone()
	return Job{Kind: KindUpsertEvaluation, ID: e.ID, Evaluation: &e}
}

func DeleteEvaluation(id string) Job { return Job{Kind: KindDeleteEvaluation, ID: id} }

func UpsertImprovement(i model.ImprovementItem) Job {
	return Job{Kind: KindUpsertImprovement, ID: i.ID, Improvement: &i}
}

// Persister applies durable-write jobs.
type Persister interface {
	Apply(ctx context.Context, job Job) error
	Close() error
}
