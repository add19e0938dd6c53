package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zaliyaya/RunConnect/internal/models"
)

const (
	eventsFileName       = "events.json"
	participantsFileName = "participants.json"
	timestampFileName    = "events_timestamp"
)

// FileBackend persists snapshots as JSON files in a local directory.
// It is the local fallback: saves fan out to subscribers within this
// process only, so sibling processes sharing the directory converge
// through polling alone.
type FileBackend struct {
	dir      string
	originID string
	logger   *zap.Logger

	mu       sync.Mutex
	nextSub  int
	handlers map[int]Handler
}

// NewFileBackend creates a file snapshot backend rooted at dir.
func NewFileBackend(dir, originID string, logger *zap.Logger) (*FileBackend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileBackend{dir: dir, originID: originID, logger: logger, handlers: make(map[int]Handler)}, nil
}

// Kind implements Backend.
func (b *FileBackend) Kind() string { return "file" }

// LoadEvents returns the persisted events snapshot, or empty when the
// file is absent or unreadable.
func (b *FileBackend) LoadEvents(_ context.Context) ([]models.Event, error) {
	var events []models.Event
	if !b.loadJSON(eventsFileName, &events) {
		return []models.Event{}, nil
	}
	return events, nil
}

// SaveEvents overwrites the events snapshot and the last-update
// timestamp, then notifies in-process subscribers.
func (b *FileBackend) SaveEvents(_ context.Context, events []models.Event) error {
	if events == nil {
		events = []models.Event{}
	}
	now := time.Now().UTC()
	if err := b.saveJSON(eventsFileName, events); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(b.dir, timestampFileName), []byte(now.Format(time.RFC3339)+"\n"), 0o644); err != nil {
		b.logger.Warn("write timestamp", zap.Error(err))
	}
	b.broadcast(Notification{Events: events, Timestamp: now, OriginID: b.originID})
	return nil
}

// LoadParticipants returns the roster side-table snapshot.
func (b *FileBackend) LoadParticipants(_ context.Context) ([]models.EventRoster, error) {
	var rosters []models.EventRoster
	if !b.loadJSON(participantsFileName, &rosters) {
		return []models.EventRoster{}, nil
	}
	return rosters, nil
}

// SaveParticipants overwrites the roster snapshot and notifies
// in-process subscribers.
func (b *FileBackend) SaveParticipants(_ context.Context, rosters []models.EventRoster) error {
	if rosters == nil {
		rosters = []models.EventRoster{}
	}
	if err := b.saveJSON(participantsFileName, rosters); err != nil {
		return err
	}
	b.broadcast(Notification{Participants: rosters, Timestamp: time.Now().UTC(), OriginID: b.originID})
	return nil
}

// Subscribe registers an in-process handler. Cross-process changes are
// only picked up by the store's polling loop.
func (b *FileBackend) Subscribe(_ context.Context, h Handler) (cancel func(), err error) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.handlers[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}, nil
}

func (b *FileBackend) broadcast(n Notification) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(n)
	}
}

// loadJSON reads and decodes a snapshot file. Returns false when the
// file is absent or corrupt; corruption is logged and treated as no
// data rather than propagated.
func (b *FileBackend) loadJSON(name string, v interface{}) bool {
	data, err := os.ReadFile(filepath.Join(b.dir, name))
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.Warn("read snapshot", zap.String("file", name), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		b.logger.Warn("corrupt snapshot, treating as empty", zap.String("file", name), zap.Error(err))
		return false
	}
	return true
}

func (b *FileBackend) saveJSON(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(b.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
