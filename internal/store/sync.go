package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/zaliyaya/RunConnect/internal/models"
	"github.com/zaliyaya/RunConnect/internal/storage"
)

// StartSync begins cross-context reconciliation: a subscription to the
// backend's push channel for sub-tick propagation, plus a periodic
// poll that re-reads the persisted snapshot and applies it when it
// differs from the last-seen state. Notifications originating from
// this context are ignored.
//
// The returned stop function tears the timer and the subscription
// down; invoke it when this context no longer needs updates.
func (s *Store) StartSync(ctx context.Context) (stop func()) {
	ctx, cancelCtx := context.WithCancel(ctx)

	cancelSub, err := s.backend.Subscribe(ctx, func(n storage.Notification) {
		if n.OriginID == s.deviceID {
			return
		}
		s.applyNotification(n)
	})
	if err != nil {
		s.logger.Warn("push channel unavailable, relying on polling", zap.Error(err))
		cancelSub = func() {}
	}

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reconcile(ctx)
			}
		}
	}()

	return func() {
		cancelSub()
		cancelCtx()
	}
}

// applyNotification replaces local state with a snapshot pushed by a
// sibling context. Full-snapshot replacement means the later writer
// wins; deltas from an earlier concurrent writer can be lost.
func (s *Store) applyNotification(n storage.Notification) {
	s.mu.Lock()
	changed := false
	if n.Events != nil {
		incoming, inline := splitInlineRosters(n.Events)
		if !eventsEqual(s.events, incoming) {
			s.events = incoming
			changed = true
		}
		if mergeInlineRosters(s.rosters, inline) {
			changed = true
		}
	}
	if n.Participants != nil {
		incoming := rosterMap(n.Participants)
		if !rostersEqual(s.rosters, incoming) {
			s.rosters = incoming
			changed = true
		}
	}
	s.lastSyncAt = s.now()
	s.mu.Unlock()

	if changed {
		s.logger.Debug("applied remote snapshot",
			zap.String("origin", n.OriginID),
			zap.Time("timestamp", n.Timestamp))
		s.notifyObservers()
	}
}

// reconcile re-reads the persisted snapshot and applies it when it
// deep-differs from local state. This is the redundant propagation
// path for writes whose push notification was missed.
func (s *Store) reconcile(ctx context.Context) {
	events, err := s.backend.LoadEvents(ctx)
	if err != nil {
		s.logger.Warn("sync poll: load events", zap.Error(err))
		return
	}
	rosters, err := s.backend.LoadParticipants(ctx)
	if err != nil {
		s.logger.Warn("sync poll: load participants", zap.Error(err))
		return
	}

	incomingEvents, inline := splitInlineRosters(events)
	incomingRosters := rosterMap(rosters)
	mergeInlineRosters(incomingRosters, inline)

	s.mu.Lock()
	changed := false
	if !eventsEqual(s.events, incomingEvents) {
		s.events = incomingEvents
		changed = true
	}
	if !rostersEqual(s.rosters, incomingRosters) {
		s.rosters = incomingRosters
		changed = true
	}
	s.lastSyncAt = s.now()
	s.mu.Unlock()

	if changed {
		s.logger.Debug("sync poll applied changed snapshot")
		s.notifyObservers()
	}
}

// eventsEqual compares snapshots through their canonical JSON form,
// which is also how they travel and persist. Dates therefore compare
// by their ISO representation, matching what a round-trip preserves.
func eventsEqual(a, b []models.Event) bool {
	return jsonEqual(a, b)
}

func rostersEqual(a, b map[int64][]models.User) bool {
	return jsonEqual(a, b)
}

func jsonEqual(a, b interface{}) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
