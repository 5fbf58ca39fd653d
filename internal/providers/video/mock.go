package video

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"videogen/internal/domain"
)

const MockName = "mock"

// Mock is an in-process provider. Each job reports processing until it has
// been fetched readyAfter times, then succeeds without an upstream URL so the
// placeholder video is served.
type Mock struct {
	mu         sync.Mutex
	readyAfter int
	polls      map[string]int
	submitted  int
}

func NewMock(readyAfter int) *Mock {
	if readyAfter < 0 {
		readyAfter = 0
	}
	return &Mock{readyAfter: readyAfter, polls: make(map[string]int)}
}

func (m *Mock) Name() string { return MockName }

func (m *Mock) Submit(ctx context.Context, prompt string, opts Options) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := "mock-" + uuid.NewString()
	m.mu.Lock()
	m.polls[id] = 0
	m.submitted++
	m.mu.Unlock()
	return &Job{ID: id, Status: domain.JobStatusProcessing}, nil
}

func (m *Mock) Fetch(ctx context.Context, id string) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	polls, ok := m.polls[id]
	if !ok {
		return &Job{ID: id, Status: domain.JobStatusNotFound, Error: "Unknown job"}, nil
	}
	polls++
	m.polls[id] = polls
	if polls > m.readyAfter {
		return &Job{ID: id, Status: domain.JobStatusSucceeded}, nil
	}
	return &Job{ID: id, Status: domain.JobStatusProcessing}, nil
}

// Submitted returns how many jobs were accepted.
func (m *Mock) Submitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitted
}

var _ Provider = (*Mock)(nil)
