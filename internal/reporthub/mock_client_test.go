package reporthub_test

import (
	"context"
	"errors"
	"sync"

	"reportes/backend/internal/models"
)

type MockClient struct {
	id          string
	filter      string
	durable     bool
	RecvChannel chan models.ReportEvent

	mu     sync.Mutex
	closed bool
}

func newMockClient(id, filter string, buffer int) *MockClient {
	return &MockClient{
		id:          id,
		filter:      filter,
		RecvChannel: make(chan models.ReportEvent, buffer),
	}
}

func (c *MockClient) GetClientID() string                       { return c.id }
func (c *MockClient) GetEntityFilter() string                   { return c.filter }
func (c *MockClient) SetEntityFilter(f string)                  { c.filter = f }
func (c *MockClient) GetSendChannel() chan<- models.ReportEvent { return c.RecvChannel }

func (c *MockClient) Durable() bool { return c.durable }

func newDurableClient(id string, buffer int) *MockClient {
	c := newMockClient(id, "", buffer)
	c.durable = true
	return c
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeSource struct {
	ch  chan models.ReportEvent
	err error
}

func (f *fakeSource) SubscribeEvents(ctx context.Context) (<-chan models.ReportEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ch, nil
}

var errSourceDown = errors.New("source down")
