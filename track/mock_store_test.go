package track

import (
	"context"
	"sync"
)

// MockStore is an in-memory StatusStore for tests. It records the order of
// write calls so tests can assert on the write path taken.
type MockStore struct {
	mu      sync.Mutex
	records map[string]*ExecutionStatus
	latest  *LatestPointer
	calls   []string

	failUpsertFull   error
	failUpsertStatus error
	failSetLatest    error
	failGet          error
}

func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]*ExecutionStatus)}
}

func (m *MockStore) UpsertFull(ctx context.Context, rec *ExecutionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "UpsertFull")
	if m.failUpsertFull != nil {
		return m.failUpsertFull
	}
	cp := *rec
	m.records[rec.ExecutionID] = &cp
	return nil
}

func (m *MockStore) UpsertStatus(ctx context.Context, rec *ExecutionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "UpsertStatus")
	if m.failUpsertStatus != nil {
		return m.failUpsertStatus
	}
	existing, ok := m.records[rec.ExecutionID]
	if !ok {
		existing = &ExecutionStatus{ExecutionID: rec.ExecutionID}
		m.records[rec.ExecutionID] = existing
	}
	// Topology fields survive a status-only upsert.
	existing.CurrentStage = rec.CurrentStage
	existing.Status = rec.Status
	existing.ErrorMessage = rec.ErrorMessage
	existing.LogURL = rec.LogURL
	existing.AISolution = rec.AISolution
	return nil
}

func (m *MockStore) SetLatest(ctx context.Context, p LatestPointer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "SetLatest")
	if m.failSetLatest != nil {
		return m.failSetLatest
	}
	m.latest = &p
	return nil
}

func (m *MockStore) Get(ctx context.Context, executionID string) (*ExecutionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	rec, ok := m.records[executionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MockStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MockTopology serves a fixed stage list, or an error.
type MockTopology struct {
	stages []string
	err    error
	asked  []string
}

func (m *MockTopology) StageNames(ctx context.Context, pipelineName string) ([]string, error) {
	m.asked = append(m.asked, pipelineName)
	if m.err != nil {
		return nil, m.err
	}
	return m.stages, nil
}

// MockAdvisor returns a fixed diagnostic.
type MockAdvisor struct {
	text  string
	asked []string
}

func (m *MockAdvisor) Advise(ctx context.Context, errorSummary string) string {
	m.asked = append(m.asked, errorSummary)
	return m.text
}

// MockNotifier records delivered transitions.
type MockNotifier struct {
	events    []Event
	solutions []string
}

func (m *MockNotifier) StageTransition(ctx context.Context, ev Event, aiSolution string) {
	m.events = append(m.events, ev)
	m.solutions = append(m.solutions, aiSolution)
}
