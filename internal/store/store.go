// Package store implements the canonical event collection for one
// running context: CRUD and join/leave operations over events and
// their participant rosters, snapshot persistence through a storage
// backend, and reconciliation with sibling contexts sharing that
// backend.
//
// Mutations are optimistic: in-memory state is updated first and is
// the source of truth for this context; persistence is best-effort
// and a failed save is logged, never rolled back. Across contexts the
// only guarantee is last-write-wins on the full snapshot.
package store

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zaliyaya/RunConnect/internal/models"
	"github.com/zaliyaya/RunConnect/internal/storage"
)

// Store owns the event collection within one context. Events are held
// without rosters inline; rosters live in a side table keyed by event
// id and are merged into the Event view on every read, which is also
// where the derived participant count is computed.
type Store struct {
	backend  storage.Backend
	deviceID string
	logger   *zap.Logger

	pollInterval time.Duration
	seed         []models.Event
	now          func() time.Time

	mu         sync.RWMutex
	events     []models.Event // newest first; Participants always nil here
	rosters    map[int64][]models.User
	lastSyncAt time.Time

	obsMu     sync.Mutex
	nextObs   int
	observers map[int]func()
}

// Option configures a Store.
type Option func(*Store)

// WithPollInterval sets how often the reconciliation loop re-reads the
// persisted snapshot.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) { s.pollInterval = d }
}

// WithSeed installs a demo dataset when the backend holds no snapshot
// on first load.
func WithSeed(events []models.Event) Option {
	return func(s *Store) { s.seed = events }
}

// New creates a Store bound to a backend. deviceID identifies this
// context in outgoing change notifications.
func New(backend storage.Backend, deviceID string, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		backend:      backend,
		deviceID:     deviceID,
		logger:       logger,
		pollInterval: 5 * time.Second,
		now:          time.Now,
		rosters:      make(map[int64][]models.User),
		observers:    make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEventID allocates an event id by combining the current timestamp
// with a random component. There is no central allocator; the random
// part keeps collision risk low across concurrent creators.
func NewEventID() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}

// Load pulls the persisted snapshot into memory. When the backend is
// empty and a seed dataset is configured, the seed is installed and
// persisted as the first snapshot. Load errors leave the store usable
// with an empty collection.
func (s *Store) Load(ctx context.Context) {
	events, err := s.backend.LoadEvents(ctx)
	if err != nil {
		s.logger.Warn("load events", zap.Error(err))
		events = []models.Event{}
	}
	rosters, err := s.backend.LoadParticipants(ctx)
	if err != nil {
		s.logger.Warn("load participants", zap.Error(err))
		rosters = nil
	}

	if len(events) == 0 && len(s.seed) > 0 {
		s.logger.Info("no persisted events, installing demo dataset", zap.Int("count", len(s.seed)))
		s.installSeed(ctx)
		return
	}

	stripped, inline := splitInlineRosters(events)
	merged := rosterMap(rosters)
	mergeInlineRosters(merged, inline)

	s.mu.Lock()
	s.events = stripped
	s.rosters = merged
	s.lastSyncAt = s.now()
	s.mu.Unlock()
	s.notifyObservers()
}

func (s *Store) installSeed(ctx context.Context) {
	events := make([]models.Event, 0, len(s.seed))
	rosters := make(map[int64][]models.User)
	for _, e := range s.seed {
		if len(e.Participants) > 0 {
			rosters[e.ID] = append([]models.User(nil), e.Participants...)
		}
		e.Participants = nil
		e.CurrentParticipants = 0
		events = append(events, e)
	}

	s.mu.Lock()
	s.events = events
	s.rosters = rosters
	s.lastSyncAt = s.now()
	s.mu.Unlock()

	s.persistEvents(ctx)
	s.persistParticipants(ctx)
	s.notifyObservers()
}

// List returns every known event, newest first, with roster merged and
// participant count recomputed. Returns an empty slice when nothing is
// loaded; callers filter and sort client-side.
func (s *Store) List() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, 0, len(s.events))
	for i := range s.events {
		out = append(out, s.merged(&s.events[i]))
	}
	return out
}

// Filter returns the events matching every set filter field.
func (s *Store) Filter(f models.EventFilters) []models.Event {
	all := s.List()
	out := make([]models.Event, 0, len(all))
	for i := range all {
		if f.Matches(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}

// GetByID returns the event with its current roster merged, or false
// when no such event exists.
func (s *Store) GetByID(id int64) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.events {
		if s.events[i].ID == id {
			return s.merged(&s.events[i]), true
		}
	}
	return models.Event{}, false
}

// merged builds the external view of an event: a copy with the roster
// attached and the count derived from it. Callers hold s.mu.
func (s *Store) merged(e *models.Event) models.Event {
	out := *e
	roster := s.rosters[e.ID]
	out.Participants = append([]models.User(nil), roster...)
	out.CurrentParticipants = len(roster)
	return out
}

// Create prepends the event to the collection (newest-first display
// convention) and persists the snapshot. A zero id is defensively
// filled, as are zero audit timestamps. The stored event is returned
// so callers learn the assigned id.
func (s *Store) Create(ctx context.Context, e models.Event) models.Event {
	if e.ID == 0 {
		e.ID = NewEventID()
	}
	now := s.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}

	initial := e.Participants
	e.Participants = nil
	e.CurrentParticipants = 0

	s.mu.Lock()
	s.events = append([]models.Event{e}, s.events...)
	if len(initial) > 0 {
		s.rosters[e.ID] = append([]models.User(nil), initial...)
	}
	s.mu.Unlock()

	s.persistEvents(ctx)
	if len(initial) > 0 {
		s.persistParticipants(ctx)
	}
	s.notifyObservers()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.merged(&e)
}

// Update merges the set fields of upd into the matching event and
// refreshes its updated-at timestamp. Rosters and the derived count
// cannot be touched through this path. Unknown ids are a silent no-op.
func (s *Store) Update(ctx context.Context, id int64, upd EventUpdate) {
	s.mu.Lock()
	found := false
	for i := range s.events {
		if s.events[i].ID == id {
			upd.apply(&s.events[i])
			s.events[i].UpdatedAt = s.now()
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return
	}
	s.persistEvents(ctx)
	s.notifyObservers()
}

// Delete removes the event and purges its roster entry. Unknown ids
// are a silent no-op.
func (s *Store) Delete(ctx context.Context, id int64) {
	s.mu.Lock()
	found := false
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			found = true
			break
		}
	}
	if found {
		delete(s.rosters, id)
	}
	s.mu.Unlock()
	if !found {
		return
	}
	s.persistEvents(ctx)
	s.persistParticipants(ctx)
	s.notifyObservers()
}

// Join adds the user to the event's roster. Joining twice is a no-op;
// joining an unknown event is a no-op so a stale id cannot resurrect
// a roster. Capacity is advisory and deliberately not enforced here.
func (s *Store) Join(ctx context.Context, eventID int64, user models.User) {
	s.mu.Lock()
	if !s.hasEvent(eventID) {
		s.mu.Unlock()
		return
	}
	roster := s.rosters[eventID]
	for _, p := range roster {
		if p.ID == user.ID {
			s.mu.Unlock()
			return
		}
	}
	s.rosters[eventID] = append(roster, user)
	s.mu.Unlock()

	s.persistParticipants(ctx)
	s.persistEvents(ctx)
	s.notifyObservers()
}

// Leave removes any roster entry matching userID. Absent users and
// unknown events are silent no-ops.
func (s *Store) Leave(ctx context.Context, eventID int64, userID int64) {
	s.mu.Lock()
	roster, ok := s.rosters[eventID]
	if !ok {
		s.mu.Unlock()
		return
	}
	changed := false
	kept := roster[:0]
	for _, p := range roster {
		if p.ID == userID {
			changed = true
			continue
		}
		kept = append(kept, p)
	}
	if changed {
		if len(kept) == 0 {
			delete(s.rosters, eventID)
		} else {
			s.rosters[eventID] = kept
		}
	}
	s.mu.Unlock()
	if !changed {
		return
	}
	s.persistParticipants(ctx)
	s.persistEvents(ctx)
	s.notifyObservers()
}

// CountOrganized returns how many events the user organizes. Computed
// over the live collection; there is no stored counter to drift.
func (s *Store) CountOrganized(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.events {
		if s.events[i].Organizer.OwnedBy(userID) {
			n++
		}
	}
	return n
}

// CountJoined returns how many events the user has joined.
func (s *Store) CountJoined(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for id := range s.rosters {
		if !s.hasEvent(id) {
			continue
		}
		for _, p := range s.rosters[id] {
			if p.ID == userID {
				n++
				break
			}
		}
	}
	return n
}

// DeviceID returns this context's origin identifier.
func (s *Store) DeviceID() string { return s.deviceID }

// BackendKind names the storage backend in use.
func (s *Store) BackendKind() string { return s.backend.Kind() }

// LastSyncAt returns when this context last took a snapshot from the
// backend (initial load, push notification, or poll).
func (s *Store) LastSyncAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSyncAt
}

// PollInterval returns the reconciliation interval.
func (s *Store) PollInterval() time.Duration { return s.pollInterval }

// Subscribe registers an observer invoked after any change to the
// collection, local or remote. The returned disposer removes it.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Store) notifyObservers() {
	s.obsMu.Lock()
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// hasEvent reports membership without merging. Callers hold s.mu.
func (s *Store) hasEvent(id int64) bool {
	for i := range s.events {
		if s.events[i].ID == id {
			return true
		}
	}
	return false
}

// persistEvents writes the canonical events snapshot. Failures are
// logged and swallowed: in-memory state stays authoritative for this
// context and the UI proceeds optimistically.
func (s *Store) persistEvents(ctx context.Context) {
	// The snapshot is never nil: an empty collection must travel as
	// an empty array, not as an absent field, or receivers would keep
	// their stale state.
	s.mu.RLock()
	snapshot := make([]models.Event, 0, len(s.events))
	snapshot = append(snapshot, s.events...)
	s.mu.RUnlock()
	if err := s.backend.SaveEvents(ctx, snapshot); err != nil {
		s.logger.Warn("persist events", zap.Error(err))
	}
}

func (s *Store) persistParticipants(ctx context.Context) {
	s.mu.RLock()
	snapshot := rosterList(s.rosters, s.events)
	s.mu.RUnlock()
	if err := s.backend.SaveParticipants(ctx, snapshot); err != nil {
		s.logger.Warn("persist participants", zap.Error(err))
	}
}

// splitInlineRosters normalizes a loaded snapshot: canonical event
// records never carry participants inline, but older evolutions of
// the snapshot format did (and the legacy key still does). Inline
// rosters are returned keyed by event id so they can be migrated into
// the side table instead of lost.
func splitInlineRosters(events []models.Event) ([]models.Event, map[int64][]models.User) {
	out := append([]models.Event(nil), events...)
	inline := make(map[int64][]models.User)
	for i := range out {
		if len(out[i].Participants) > 0 {
			inline[out[i].ID] = append([]models.User(nil), out[i].Participants...)
		}
		out[i].Participants = nil
		out[i].CurrentParticipants = 0
	}
	return out, inline
}

// mergeInlineRosters folds migrated inline rosters into the side
// table for event ids the table does not already cover; an existing
// side-table entry wins. Reports whether anything was added.
func mergeInlineRosters(rosters, inline map[int64][]models.User) bool {
	added := false
	for id, r := range inline {
		if _, ok := rosters[id]; !ok {
			rosters[id] = r
			added = true
		}
	}
	return added
}

func rosterMap(rosters []models.EventRoster) map[int64][]models.User {
	m := make(map[int64][]models.User, len(rosters))
	for _, r := range rosters {
		if len(r.Participants) > 0 {
			m[r.EventID] = append([]models.User(nil), r.Participants...)
		}
	}
	return m
}

// rosterList serializes the roster table in event order so snapshots
// are stable across contexts.
func rosterList(m map[int64][]models.User, events []models.Event) []models.EventRoster {
	out := make([]models.EventRoster, 0, len(m))
	for i := range events {
		if roster, ok := m[events[i].ID]; ok {
			out = append(out, models.EventRoster{EventID: events[i].ID, Participants: append([]models.User(nil), roster...)})
		}
	}
	return out
}
