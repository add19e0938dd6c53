package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zaliyaya/RunConnect/internal/models"
)

const (
	// Well-known snapshot keys shared by every context on the same
	// Redis database.
	keySharedEvents       = "runconnect:shared_events"
	keySharedParticipants = "runconnect:shared_participants"
	keyLastUpdated        = "runconnect:shared_events_timestamp"

	// keyLegacyEvents is the pre-shared-storage key. A snapshot found
	// there is migrated to the shared key on first load.
	keyLegacyEvents = "runconnect:events_v2"

	// channelUpdates carries change notifications between contexts.
	channelUpdates = "runconnect:updates"

	saveTimeout = 5 * time.Second
)

// RedisBackend persists snapshots to Redis and broadcasts changes on
// a pub/sub channel tagged with this context's origin id.
type RedisBackend struct {
	client   *redis.Client
	originID string
	logger   *zap.Logger
}

// NewRedisBackend creates a Redis snapshot backend. originID tags
// outgoing notifications so subscribers can ignore their own writes.
func NewRedisBackend(client *redis.Client, originID string, logger *zap.Logger) *RedisBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBackend{client: client, originID: originID, logger: logger}
}

// Kind implements Backend.
func (b *RedisBackend) Kind() string { return "redis" }

// LoadEvents returns the shared snapshot. When the shared key is
// absent but a legacy snapshot exists, it is migrated to the shared
// key and returned. Malformed data is logged and treated as no data.
func (b *RedisBackend) LoadEvents(ctx context.Context) ([]models.Event, error) {
	events, found, err := b.loadEventsKey(ctx, keySharedEvents)
	if err != nil {
		return nil, err
	}
	if found {
		return events, nil
	}

	legacy, found, err := b.loadEventsKey(ctx, keyLegacyEvents)
	if err != nil {
		return nil, err
	}
	if found {
		b.logger.Info("migrating legacy events to shared storage", zap.Int("count", len(legacy)))
		if err := b.SaveEvents(ctx, legacy); err != nil {
			b.logger.Warn("legacy migration save failed", zap.Error(err))
		}
		return legacy, nil
	}
	return []models.Event{}, nil
}

func (b *RedisBackend) loadEventsKey(ctx context.Context, key string) ([]models.Event, bool, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	var events []models.Event
	if err := json.Unmarshal(data, &events); err != nil {
		b.logger.Warn("corrupt events snapshot, treating as empty", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return events, true, nil
}

// SaveEvents overwrites the shared snapshot, refreshes the last-update
// timestamp, and broadcasts the new snapshot to other contexts.
func (b *RedisBackend) SaveEvents(ctx context.Context, events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	now := time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, keySharedEvents, data, 0)
	pipe.Set(ctx, keyLastUpdated, now.Format(time.RFC3339), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	b.publish(ctx, Notification{Events: events, Timestamp: now, OriginID: b.originID})
	return nil
}

// LoadParticipants returns the roster side-table snapshot.
func (b *RedisBackend) LoadParticipants(ctx context.Context) ([]models.EventRoster, error) {
	data, err := b.client.Get(ctx, keySharedParticipants).Bytes()
	if err == redis.Nil {
		return []models.EventRoster{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	var rosters []models.EventRoster
	if err := json.Unmarshal(data, &rosters); err != nil {
		b.logger.Warn("corrupt participants snapshot, treating as empty", zap.Error(err))
		return []models.EventRoster{}, nil
	}
	return rosters, nil
}

// SaveParticipants overwrites the roster snapshot and broadcasts it.
func (b *RedisBackend) SaveParticipants(ctx context.Context, rosters []models.EventRoster) error {
	if rosters == nil {
		rosters = []models.EventRoster{}
	}
	data, err := json.Marshal(rosters)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}
	now := time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	if err := b.client.Set(ctx, keySharedParticipants, data, 0).Err(); err != nil {
		return fmt.Errorf("save participants: %w", err)
	}

	b.publish(ctx, Notification{Participants: rosters, Timestamp: now, OriginID: b.originID})
	return nil
}

func (b *RedisBackend) publish(ctx context.Context, n Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		b.logger.Warn("marshal notification", zap.Error(err))
		return
	}
	if err := b.client.Publish(ctx, channelUpdates, body).Err(); err != nil {
		b.logger.Warn("publish notification", zap.Error(err))
	}
}

// Subscribe listens on the updates channel and calls h for each
// well-formed notification. Returns a cancel function that stops the
// subscription.
func (b *RedisBackend) Subscribe(ctx context.Context, h Handler) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(ctx)
	pubsub := b.client.Subscribe(ctx, channelUpdates)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var n Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					b.logger.Warn("malformed notification", zap.Error(err))
					continue
				}
				h(n)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}
