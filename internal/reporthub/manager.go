// Package reporthub fans report events out to connected dashboards and
// notifiers.
package reporthub

import (
	"context"
	"errors"
	"time"

	"reportes/backend/internal/models"

	"go.uber.org/zap"
)

// EventSource delivers report events, e.g. from the Redis bus.
type EventSource interface {
	SubscribeEvents(ctx context.Context) (<-chan models.ReportEvent, error)
}

// DefaultDurableTimeout bounds how long the hub waits on a durable client.
const DefaultDurableTimeout = 2 * time.Second

// ErrStopped is returned by Register once Run has returned.
var ErrStopped = errors.New("report hub stopped")

// ManagerService owns the client set. Only Run touches Clients.
type ManagerService struct {
	Clients map[string]Client

	// DurableTimeout is how long broadcast blocks on a full durable client
	// before skipping the event for that client.
	DurableTimeout time.Duration

	EventsCh     chan models.ReportEvent
	RegisterCh   chan Client
	UnregisterCh chan Client

	Source EventSource
	Logger *zap.Logger

	countCh chan chan int
	done    chan struct{}
}

// NewManagerService creates a hub reading from src. src may be nil; events
// can then only be injected through EventsCh.
func NewManagerService(src EventSource, logger *zap.Logger) *ManagerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManagerService{
		Clients:        make(map[string]Client),
		DurableTimeout: DefaultDurableTimeout,
		EventsCh:       make(chan models.ReportEvent, 64),
		RegisterCh:     make(chan Client),
		UnregisterCh:   make(chan Client, 16),
		Source:         src,
		Logger:         logger,
		countCh:        make(chan chan int),
		done:           make(chan struct{}),
	}
}

// Run dispatches events until ctx is cancelled, then closes every client.
// It must be called once.
func (m *ManagerService) Run(ctx context.Context) {
	if m.Source != nil {
		m.startSourceListener(ctx)
	}

	m.Logger.Info("Report hub started")
	defer close(m.done)
	defer m.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-m.RegisterCh:
			if old, ok := m.Clients[client.GetClientID()]; ok && old != client {
				old.Close()
			}
			m.Clients[client.GetClientID()] = client
			m.Logger.Debug("Client registered", zap.String("client_id", client.GetClientID()))

		case client := <-m.UnregisterCh:
			m.remove(client)

		case evt := <-m.EventsCh:
			m.broadcast(evt)

		case reply := <-m.countCh:
			reply <- len(m.Clients)
		}
	}
}

// Register hands client to the hub. It fails instead of blocking when ctx
// ends or the hub has stopped.
func (m *ManagerService) Register(ctx context.Context, client Client) error {
	select {
	case m.RegisterCh <- client:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrStopped
	}
}

// Done is closed when Run has returned.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}

// Count returns the number of registered clients. It needs Run to be active.
func (m *ManagerService) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	select {
	case m.countCh <- reply:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return <-reply, nil
}

func (m *ManagerService) startSourceListener(ctx context.Context) {
	events, err := m.Source.SubscribeEvents(ctx)
	if err != nil {
		m.Logger.Error("Failed to subscribe to report events", zap.Error(err))
		return
	}

	go func() {
		for evt := range events {
			select {
			case m.EventsCh <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *ManagerService) broadcast(evt models.ReportEvent) {
	for id, client := range m.Clients {
		if !Matches(client, evt) {
			continue
		}
		if IsDurable(client) {
			m.sendDurable(id, client, evt)
			continue
		}
		select {
		case client.GetSendChannel() <- evt:
		default:
			m.Logger.Warn("Dropping slow client", zap.String("client_id", id))
			delete(m.Clients, id)
			client.Close()
		}
	}
}

// sendDurable waits up to DurableTimeout. A lagging durable client misses
// the event but stays registered.
func (m *ManagerService) sendDurable(id string, client Client, evt models.ReportEvent) {
	timer := time.NewTimer(m.DurableTimeout)
	defer timer.Stop()

	select {
	case client.GetSendChannel() <- evt:
	case <-timer.C:
		m.Logger.Warn("Durable client lagging, event skipped",
			zap.String("client_id", id),
			zap.String("report_id", evt.ReportID))
	}
}

func (m *ManagerService) remove(client Client) {
	id := client.GetClientID()
	if current, ok := m.Clients[id]; ok && current == client {
		delete(m.Clients, id)
		client.Close()
		m.Logger.Debug("Client unregistered", zap.String("client_id", id))
	}
}

func (m *ManagerService) shutdown() {
	for id, client := range m.Clients {
		delete(m.Clients, id)
		client.Close()
	}
	m.Logger.Info("Report hub stopped")
}
