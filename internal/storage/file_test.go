package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zaliyaya/RunConnect/internal/models"
)

func newFileBackend(t *testing.T) (*FileBackend, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := NewFileBackend(dir, "device-test", nil)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	return b, dir
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	b, dir := newFileBackend(t)

	end := time.Date(2026, 9, 10, 20, 30, 0, 0, time.UTC)
	events := []models.Event{
		{
			ID:        1001,
			Title:     "Evening run",
			StartDate: time.Date(2026, 9, 10, 19, 0, 0, 0, time.UTC),
			EndDate:   &end,
			City:      "Moscow",
			Currency:  "RUB",
			IsFree:    true,
			Organizer: models.Organizer{ID: 4, Type: models.OrganizerUser, Name: "Alexey"},
			Tags:      []string{"run", "evening"},
			Status:    models.StatusUpcoming,
			CreatedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	if err := b.SaveEvents(ctx, events); err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}

	// A fresh context over the same directory sees the snapshot.
	b2, err := NewFileBackend(dir, "device-other", nil)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	loaded, err := b2.LoadEvents(ctx)
	if err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 event, got %d", len(loaded))
	}
	got := loaded[0]
	if got.ID != 1001 || got.Title != "Evening run" || got.City != "Moscow" {
		t.Errorf("fields lost in round trip: %+v", got)
	}
	// Date fields survive ISO round-tripping exactly.
	if !got.StartDate.Equal(events[0].StartDate) {
		t.Errorf("start date changed: %v vs %v", got.StartDate, events[0].StartDate)
	}
	if got.EndDate == nil || !got.EndDate.Equal(*events[0].EndDate) {
		t.Errorf("end date changed: %v", got.EndDate)
	}
	if got.Organizer != events[0].Organizer {
		t.Errorf("organizer changed: %+v", got.Organizer)
	}
}

func TestFileBackendParticipantsRoundTrip(t *testing.T) {
	ctx := context.Background()
	b, _ := newFileBackend(t)

	rosters := []models.EventRoster{
		{EventID: 1001, Participants: []models.User{{ID: 7, FirstName: "Ivan"}, {ID: 8, FirstName: "Olga"}}},
	}
	if err := b.SaveParticipants(ctx, rosters); err != nil {
		t.Fatalf("SaveParticipants: %v", err)
	}

	loaded, err := b.LoadParticipants(ctx)
	if err != nil {
		t.Fatalf("LoadParticipants: %v", err)
	}
	if len(loaded) != 1 || len(loaded[0].Participants) != 2 {
		t.Fatalf("roster lost in round trip: %+v", loaded)
	}
	if loaded[0].Participants[0].ID != 7 || loaded[0].Participants[1].ID != 8 {
		t.Error("roster order not preserved")
	}
}

func TestFileBackendEmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()

	t.Run("absent snapshot loads as empty", func(t *testing.T) {
		b, _ := newFileBackend(t)
		events, err := b.LoadEvents(ctx)
		if err != nil {
			t.Fatalf("LoadEvents: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("expected empty collection, got %d", len(events))
		}
	})

	t.Run("corrupt snapshot loads as empty, not an error", func(t *testing.T) {
		b, dir := newFileBackend(t)
		if err := os.WriteFile(filepath.Join(dir, "events.json"), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		events, err := b.LoadEvents(ctx)
		if err != nil {
			t.Fatalf("corrupt data must not propagate an error, got %v", err)
		}
		if len(events) != 0 {
			t.Errorf("expected empty collection, got %d", len(events))
		}
	})
}

func TestFileBackendNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	b, _ := newFileBackend(t)

	var got []Notification
	cancel, err := b.Subscribe(ctx, func(n Notification) { got = append(got, n) })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := b.SaveEvents(ctx, []models.Event{{ID: 1, Title: "run"}}); err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].OriginID != "device-test" {
		t.Errorf("notification missing origin id: %+v", got[0])
	}
	if len(got[0].Events) != 1 {
		t.Errorf("notification missing snapshot: %+v", got[0])
	}

	cancel()
	if err := b.SaveEvents(ctx, nil); err != nil {
		t.Fatalf("SaveEvents: %v", err)
	}
	if len(got) != 1 {
		t.Error("cancelled subscriber still notified")
	}
}
