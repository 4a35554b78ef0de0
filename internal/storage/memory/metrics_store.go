package memory

import (
	"context"
	"sort"
	"sync"

	"token-strategy-lab/internal/domain"
	"token-strategy-lab/internal/storage"
)

// MetricsStore is an in-memory implementation of storage.MetricsStore.
type MetricsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Metrics // keyed by run_id|strategy_id
}

// NewMetricsStore creates a new in-memory metrics store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{
		data: make(map[string]*domain.Metrics),
	}
}

func metricsKey(runID, strategyID string) string {
	return runID + "|" + strategyID
}

// Insert adds new metrics. Returns ErrDuplicateKey if key exists.
func (s *MetricsStore) Insert(_ context.Context, m *domain.Metrics) error {
	if m == nil || m.RunID == "" || m.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := metricsKey(m.RunID, m.StrategyID)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	mCopy := *m
	s.data[key] = &mCopy
	return nil
}

// InsertBulk adds multiple metrics atomically. Fails entire batch on any duplicate.
func (s *MetricsStore) InsertBulk(_ context.Context, metrics []*domain.Metrics) error {
	if len(metrics) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		if m == nil || m.RunID == "" || m.StrategyID == "" {
			return storage.ErrInvalidInput
		}
		key := metricsKey(m.RunID, m.StrategyID)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, m := range metrics {
		mCopy := *m
		s.data[metricsKey(m.RunID, m.StrategyID)] = &mCopy
	}

	return nil
}

// GetByKey retrieves metrics by (run_id, strategy_id). Returns ErrNotFound if not exists.
func (s *MetricsStore) GetByKey(_ context.Context, runID, strategyID string) (*domain.Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[metricsKey(runID, strategyID)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	mCopy := *m
	return &mCopy, nil
}

// GetByRun retrieves all metrics for a run, ordered by strategy_id ASC.
func (s *MetricsStore) GetByRun(_ context.Context, runID string) ([]*domain.Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Metrics
	for _, m := range s.data {
		if m.RunID == runID {
			mCopy := *m
			result = append(result, &mCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StrategyID < result[j].StrategyID
	})

	return result, nil
}

var _ storage.MetricsStore = (*MetricsStore)(nil)
