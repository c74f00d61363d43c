package storage

import (
	"context"
	"encoding/json"
	"sync"

	"reportes/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const reportEventsChannel = "reports:events"

type eventBus interface {
	publish(ctx context.Context, evt models.ReportEvent) error
	subscribe(ctx context.Context) (<-chan models.ReportEvent, error)
}

// PublishEvent sends evt to every subscriber, across processes when Redis is
// configured.
func (s *Service) PublishEvent(ctx context.Context, evt models.ReportEvent) error {
	if err := s.bus.publish(ctx, evt); err != nil {
		return classifyError("publish event", err)
	}
	return nil
}

// SubscribeEvents streams events until ctx is cancelled.
func (s *Service) SubscribeEvents(ctx context.Context) (<-chan models.ReportEvent, error) {
	ch, err := s.bus.subscribe(ctx)
	if err != nil {
		return nil, classifyError("subscribe events", err)
	}
	return ch, nil
}

type redisBus struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func (b *redisBus) publish(ctx context.Context, evt models.ReportEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, reportEventsChannel, payload).Err()
}

func (b *redisBus) subscribe(ctx context.Context) (<-chan models.ReportEvent, error) {
	pubsub := b.rdb.Subscribe(ctx, reportEventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan models.ReportEvent, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt models.ReportEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.logger.Warn("Dropping malformed report event", zap.Error(err))
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// localBus delivers events inside one process when Redis is not configured.
type localBus struct {
	mu   sync.RWMutex
	subs map[chan models.ReportEvent]struct{}
}

func newLocalBus() *localBus {
	return &localBus{subs: make(map[chan models.ReportEvent]struct{})}
}

func (b *localBus) publish(_ context.Context, evt models.ReportEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// slow subscriber, drop
		}
	}
	return nil
}

func (b *localBus) subscribe(ctx context.Context) (<-chan models.ReportEvent, error) {
	ch := make(chan models.ReportEvent, 64)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}
