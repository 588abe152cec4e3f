package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/noloss/pkg/pubsub"
)

// MockPublisher records every published pack unless PublishFunc is set.
type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mu    sync.Mutex
	packs []*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.packs = append(m.packs, pack)
	return nil
}

func (m *MockPublisher) Packs() []*pubsub.Pack {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*pubsub.Pack{}, m.packs...)
}
