// Package store keeps simulation runs and the percentile statistics the
// results page charts.
package store

import (
	"context"
	"time"

	"github.com/uyouii/fanchart/model"
)

type RunStatus string

const (
	StatusRunning  RunStatus = "running"
	StatusComplete RunStatus = "complete"
	StatusFailed   RunStatus = "failed"
)

// Run is one finished or in-flight simulation run. Stats is nil until the
// run completes.
type Run struct {
	ID           string
	ExperimentID string
	Name         string
	Status       RunStatus
	Stats        *model.StatisticsSnapshot
	FinishedAt   *time.Time
}

type Repository interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, experimentID string) ([]Run, error)
	Close() error
}

func cloneRun(r Run) Run {
	if r.Stats != nil {
		s := *r.Stats
		r.Stats = &s
	}
	if r.FinishedAt != nil {
		t := *r.FinishedAt
		r.FinishedAt = &t
	}
	return r
}
