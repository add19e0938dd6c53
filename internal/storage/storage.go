// Package storage provides snapshot persistence backends for the
// event store. A backend holds the full serialized collection of
// events and the roster side-table under well-known keys, plus a
// change-notification channel informing other live contexts that the
// snapshot changed.
package storage

import (
	"context"
	"time"

	"github.com/zaliyaya/RunConnect/internal/models"
)

// Notification is the cross-context broadcast payload. Exactly one of
// Events and Participants is set per message; the set field is always
// serialized, even empty, so a receiver can tell "snapshot is now
// empty" apart from "field not present". OriginID identifies the
// context that produced the change so receivers can ignore their own
// writes.
type Notification struct {
	Events       []models.Event       `json:"events"`
	Participants []models.EventRoster `json:"participants"`
	Timestamp    time.Time            `json:"timestamp"`
	OriginID     string               `json:"origin_id"`
}

// Handler consumes change notifications.
type Handler func(Notification)

// Backend is the minimal persistence contract the event store needs.
// Load methods return the last persisted snapshot, or an empty slice
// when none exists or the stored data is malformed; they never fail
// the caller over corrupt data. Save methods overwrite the snapshot
// and broadcast the change to other subscribed contexts.
type Backend interface {
	LoadEvents(ctx context.Context) ([]models.Event, error)
	SaveEvents(ctx context.Context, events []models.Event) error

	LoadParticipants(ctx context.Context) ([]models.EventRoster, error)
	SaveParticipants(ctx context.Context, rosters []models.EventRoster) error

	// Subscribe registers a handler for change notifications from any
	// context sharing this backend, including this one (callers filter
	// by origin id). The returned cancel stops delivery.
	Subscribe(ctx context.Context, h Handler) (cancel func(), err error)

	// Kind names the backend for sync-status introspection.
	Kind() string
}
