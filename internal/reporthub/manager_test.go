package reporthub_test

import (
	"context"
	"testing"
	"time"

	"reportes/backend/internal/models"
	"reportes/backend/internal/reporthub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, src reporthub.EventSource) (*reporthub.ManagerService, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	hub := reporthub.NewManagerService(src, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub, cancel, done
}

func waitCount(t *testing.T, hub *reporthub.ManagerService, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		n, err := hub.Count(context.Background())
		return err == nil && n == want
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, ch <-chan models.ReportEvent) models.ReportEvent {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return models.ReportEvent{}
	}
}

func assertNothing(t *testing.T, ch <-chan models.ReportEvent) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_Run(t *testing.T) {
	hub, _, _ := startHub(t, nil)

	all := newMockClient("all", "", 4)
	police := newMockClient("police", "Policía", 4)
	fire := newMockClient("fire", "Bomberos", 4)

	hub.RegisterCh <- all
	hub.RegisterCh <- police
	hub.RegisterCh <- fire
	waitCount(t, hub, 3)

	hub.EventsCh <- models.ReportEvent{Type: models.EventReportCreated, ReportID: "r1", EntityName: "Policía"}

	assert.Equal(t, "r1", receive(t, all.RecvChannel).ReportID)
	assert.Equal(t, "r1", receive(t, police.RecvChannel).ReportID)
	assertNothing(t, fire.RecvChannel)
}

func TestManager_ReassignmentReachesBothEntities(t *testing.T) {
	hub, _, _ := startHub(t, nil)

	police := newMockClient("police", "Policía", 4)
	fire := newMockClient("fire", "Bomberos", 4)
	hub.RegisterCh <- police
	hub.RegisterCh <- fire
	waitCount(t, hub, 2)

	hub.EventsCh <- models.ReportEvent{
		Type:           models.EventReportUpdated,
		ReportID:       "r2",
		EntityName:     "Bomberos",
		PreviousEntity: "Policía",
	}

	assert.Equal(t, "r2", receive(t, police.RecvChannel).ReportID)
	assert.Equal(t, "r2", receive(t, fire.RecvChannel).ReportID)
}

func TestManager_Unregister(t *testing.T) {
	hub, _, _ := startHub(t, nil)

	c := newMockClient("c1", "", 1)
	hub.RegisterCh <- c
	waitCount(t, hub, 1)

	hub.UnregisterCh <- c
	waitCount(t, hub, 0)
	assert.True(t, c.IsClosed())
}

func TestManager_RegisterReplacesSameID(t *testing.T) {
	hub, _, _ := startHub(t, nil)

	first := newMockClient("dup", "", 1)
	second := newMockClient("dup", "", 1)
	hub.RegisterCh <- first
	hub.RegisterCh <- second
	waitCount(t, hub, 1)

	assert.True(t, first.IsClosed())
	assert.False(t, second.IsClosed())

	// A late unregister of the replaced client must not evict the new one.
	hub.UnregisterCh <- first
	hub.EventsCh <- models.ReportEvent{ReportID: "r3"}
	assert.Equal(t, "r3", receive(t, second.RecvChannel).ReportID)
	waitCount(t, hub, 1)
}

func TestManager_DropsSlowClient(t *testing.T) {
	hub, _, _ := startHub(t, nil)

	slow := newMockClient("slow", "", 0)
	hub.RegisterCh <- slow
	waitCount(t, hub, 1)

	hub.EventsCh <- models.ReportEvent{ReportID: "r4"}
	waitCount(t, hub, 0)
	assert.True(t, slow.IsClosed())
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	hub, cancel, done := startHub(t, nil)

	a := newMockClient("a", "", 1)
	b := newMockClient("b", "", 1)
	hub.RegisterCh <- a
	hub.RegisterCh <- b
	waitCount(t, hub, 2)

	cancel()
	<-done

	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
}

func TestManager_SourceListener(t *testing.T) {
	src := &fakeSource{ch: make(chan models.ReportEvent, 1)}
	hub, _, _ := startHub(t, src)

	c := newMockClient("c", "", 2)
	hub.RegisterCh <- c
	waitCount(t, hub, 1)

	src.ch <- models.ReportEvent{Type: models.EventCommentCreated, ReportID: "r5"}
	evt := receive(t, c.RecvChannel)
	assert.Equal(t, models.EventCommentCreated, evt.Type)
	assert.Equal(t, "r5", evt.ReportID)
}

func TestManager_SourceFailureKeepsHubRunning(t *testing.T) {
	hub, _, _ := startHub(t, &fakeSource{err: errSourceDown})

	c := newMockClient("c", "", 1)
	hub.RegisterCh <- c
	waitCount(t, hub, 1)

	hub.EventsCh <- models.ReportEvent{ReportID: "r6"}
	assert.Equal(t, "r6", receive(t, c.RecvChannel).ReportID)
}

func TestManager_CountRespectsContext(t *testing.T) {
	hub := reporthub.NewManagerService(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hub.Count(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatches(t *testing.T) {
	c := newMockClient("x", "Aseo", 0)
	assert.True(t, reporthub.Matches(c, models.ReportEvent{EntityName: "Aseo"}))
	assert.True(t, reporthub.Matches(c, models.ReportEvent{EntityName: "General", PreviousEntity: "Aseo"}))
	assert.False(t, reporthub.Matches(c, models.ReportEvent{EntityName: "General"}))

	c.SetEntityFilter("")
	assert.True(t, reporthub.Matches(c, models.ReportEvent{EntityName: "General"}))
}

func TestManager_DurableClientSurvivesBurst(t *testing.T) {
	hub, _, _ := startHub(t, nil)

	durable := newDurableClient("notifier", 1)
	hub.RegisterCh <- durable
	waitCount(t, hub, 1)

	received := make(chan int, 1)
	go func() {
		n := 0
		for range durable.RecvChannel {
			time.Sleep(time.Millisecond)
			n++
			if n == 80 {
				received <- n
				return
			}
		}
	}()

	for i := 0; i < 80; i++ {
		hub.EventsCh <- models.ReportEvent{Type: models.EventReportCreated, ReportID: "burst"}
	}

	select {
	case n := <-received:
		assert.Equal(t, 80, n)
	case <-time.After(5 * time.Second):
		t.Fatal("durable client did not receive the whole burst")
	}
	waitCount(t, hub, 1)
	assert.False(t, durable.IsClosed())
}

func TestManager_DurableClientSkipsWhenStuck(t *testing.T) {
	hub := reporthub.NewManagerService(nil, nil)
	hub.DurableTimeout = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	stuck := newDurableClient("stuck", 0)
	require.NoError(t, hub.Register(ctx, stuck))

	hub.EventsCh <- models.ReportEvent{ReportID: "a"}
	hub.EventsCh <- models.ReportEvent{ReportID: "b"}

	waitCount(t, hub, 1)
	assert.False(t, stuck.IsClosed())
}

func TestManager_RegisterAfterStop(t *testing.T) {
	hub, cancel, done := startHub(t, nil)
	cancel()
	<-done

	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not report stop")
	}

	err := hub.Register(context.Background(), newMockClient("late", "", 1))
	assert.ErrorIs(t, err, reporthub.ErrStopped)
}

func TestManager_RegisterRespectsContext(t *testing.T) {
	hub := reporthub.NewManagerService(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hub.Register(ctx, newMockClient("c", "", 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsDurable(t *testing.T) {
	assert.True(t, reporthub.IsDurable(newDurableClient("d", 0)))
	assert.False(t, reporthub.IsDurable(newMockClient("m", "", 0)))
}
