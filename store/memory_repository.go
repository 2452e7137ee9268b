package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/uyouii/fanchart/common"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	runs map[string]Run
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{runs: make(map[string]Run)}
}

func (r *MemoryRepository) SaveRun(_ context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run id is empty: %w", common.ErrorInvalidValue)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = cloneRun(run)
	return nil
}

func (r *MemoryRepository) GetRun(_ context.Context, id string) (*Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrorNotFound)
	}
	run = cloneRun(run)
	return &run, nil
}

func (r *MemoryRepository) ListRuns(_ context.Context, experimentID string) ([]Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runs := []Run{}
	for _, run := range r.runs {
		if experimentID != "" && run.ExperimentID != experimentID {
			continue
		}
		runs = append(runs, cloneRun(run))
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
