package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func newSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}

type deliveryLog struct {
	mu        sync.Mutex
	delivered []string
	failed    []bool
}

func (d *deliveryLog) OutboxDelivered(_ context.Context, eventType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delivered = append(d.delivered, eventType)
}

func (d *deliveryLog) OutboxFailed(_ context.Context, _ string, dead bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failed = append(d.failed, dead)
}

func TestOutboxPublisher_OnlyCommittedEventsLand(t *testing.T) {
	db := newOutboxDB(t)
	pub := NewOutboxPublisher(newSerializer(), 3)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return pub.SaveEvents(ctx, tx, placedEvent(1))
	}))
	_ = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, pub.SaveEvents(ctx, tx, placedEvent(2)))
		return errors.New("rollback")
	})

	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].AggregateID)
	assert.Equal(t, 3, pending[0].MaxRetries)

	assert.Error(t, pub.SaveEvents(ctx, "not a tx", placedEvent(3)))
}

func TestOutboxProcessor_DeliversPendingEntries(t *testing.T) {
	db := newOutboxDB(t)
	serializer := newSerializer()
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()
	require.NoError(t, NewOutboxPublisher(serializer, 0).SaveEvents(ctx, db, placedEvent(1), placedEvent(2)))

	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{order.EventTypeOrderPlaced}}
	bus.Subscribe(handler)

	observer := &deliveryLog{}
	p := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	p.SetObserver(observer)

	assert.Equal(t, 2, p.ProcessOnce(ctx))
	assert.Equal(t, 2, handler.count())
	assert.Len(t, observer.delivered, 2)
	assert.Zero(t, p.ProcessOnce(ctx), "sent entries are not delivered twice")

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[shared.OutboxStatusSent])

	deleted, err := repo.DeleteSentBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestOutboxProcessor_FailureSchedulesRetryThenDeadLetters(t *testing.T) {
	db := newOutboxDB(t)
	serializer := newSerializer()
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()
	require.NoError(t, NewOutboxPublisher(serializer, 2).SaveEvents(ctx, db, placedEvent(1)))

	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(&recordingHandler{types: []string{order.EventTypeOrderPlaced}, err: errors.New("smtp down")})
	observer := &deliveryLog{}
	p := NewOutboxProcessor(repo, bus, serializer, DefaultOutboxProcessorConfig(), zap.NewNop())
	p.SetObserver(observer)

	assert.Equal(t, 1, p.ProcessOnce(ctx))
	pending, err := repo.FindPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	due, err := repo.FindRetryable(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, 1, due[0].RetryCount)
	assert.Equal(t, "smtp down", due[0].LastError)

	// Second failure exhausts MaxRetries.
	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{due[0].ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	p.deliver(ctx, claimed[0])

	dead, total, err := repo.FindDead(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 2, dead[0].RetryCount)
	assert.Equal(t, []bool{false, true}, observer.failed)
	assert.Empty(t, observer.delivered)

	require.NoError(t, dead[0].Revive())
	require.NoError(t, repo.Update(ctx, dead[0]))
	reloaded, err := repo.FindByID(ctx, dead[0].ID)
	require.NoError(t, err)
	assert.Equal(t, shared.OutboxStatusPending, reloaded.Status)
}

func TestOutboxProcessor_StartStop(t *testing.T) {
	db := newOutboxDB(t)
	serializer := newSerializer()
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()
	require.NoError(t, NewOutboxPublisher(serializer, 0).SaveEvents(ctx, db, placedEvent(1)))

	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{order.EventTypeOrderPlaced}}
	bus.Subscribe(handler)

	cfg := DefaultOutboxProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.CleanupEnabled = false
	p := NewOutboxProcessor(repo, bus, serializer, cfg, zap.NewNop())
	require.NoError(t, p.Start(ctx))

	assert.Eventually(t, func() bool { return handler.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, p.Stop(stopCtx))
}

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryIdempotencyStore()
	defer store.Close()

	inner := &recordingHandler{types: []string{order.EventTypeOrderPlaced}}
	h := NewIdempotentHandler("notify", inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())
	e := placedEvent(1)

	require.NoError(t, h.Handle(ctx, e))
	require.NoError(t, h.Handle(ctx, e))
	assert.Equal(t, 1, inner.count())
	assert.Equal(t, []string{order.EventTypeOrderPlaced}, h.EventTypes())

	other := NewIdempotentHandler("audit", inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())
	require.NoError(t, other.Handle(ctx, e))
	assert.Equal(t, 2, inner.count(), "keys are namespaced per handler")

	stats := h.Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_FailureReleasesKey(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryIdempotencyStore()
	defer store.Close()

	inner := &recordingHandler{err: errors.New("boom")}
	h := NewIdempotentHandler("notify", inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())
	e := placedEvent(1)

	assert.Error(t, h.Handle(ctx, e))
	inner.err = nil
	require.NoError(t, h.Handle(ctx, e))
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, int64(1), h.Stats().EventsFailed)
}
