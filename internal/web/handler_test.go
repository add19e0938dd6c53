package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/zaliyaya/RunConnect/internal/middleware"
	"github.com/zaliyaya/RunConnect/internal/models"
	"github.com/zaliyaya/RunConnect/internal/storage"
	"github.com/zaliyaya/RunConnect/internal/store"
)

// memBackend is an in-memory storage.Backend for handler tests.
type memBackend struct {
	events  []models.Event
	rosters []models.EventRoster
}

func (b *memBackend) Kind() string { return "memory" }
func (b *memBackend) LoadEvents(context.Context) ([]models.Event, error) {
	return b.events, nil
}
func (b *memBackend) SaveEvents(_ context.Context, events []models.Event) error {
	b.events = events
	return nil
}
func (b *memBackend) LoadParticipants(context.Context) ([]models.EventRoster, error) {
	return b.rosters, nil
}
func (b *memBackend) SaveParticipants(_ context.Context, rosters []models.EventRoster) error {
	b.rosters = rosters
	return nil
}
func (b *memBackend) Subscribe(context.Context, storage.Handler) (func(), error) {
	return func() {}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.New(&memBackend{}, "device-test", nil)
	st.Load(context.Background())

	router := gin.New()
	router.Use(middleware.Identity())
	RegisterRoutes(router, NewHandler(st, nil), NewFeed(st, nil))
	return router, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, userID int64, name string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Telegram-User-ID", strconv.FormatInt(userID, 10))
		req.Header.Set("X-Telegram-First-Name", name)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEvent(t *testing.T, w *httptest.ResponseRecorder) models.Event {
	t.Helper()
	var env struct {
		Success bool         `json:"success"`
		Data    models.Event `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return env.Data
}

func TestHandlerCreateJoinFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	create := map[string]interface{}{
		"title":      "Вечерняя пробежка",
		"start_date": "2026-09-10T19:00:00Z",
		"city":       "Москва",
		"is_free":    true,
	}

	t.Run("create without identity is rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/events", create, 0, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	w := doJSON(t, router, http.MethodPost, "/events", create, 4, "Алексей")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	created := decodeEvent(t, w)
	if created.ID == 0 {
		t.Fatal("expected an assigned event id")
	}
	if created.Organizer.ID != 4 || created.Organizer.Type != models.OrganizerUser {
		t.Errorf("organizer not taken from acting user: %+v", created.Organizer)
	}

	path := "/events/" + strconv.FormatInt(created.ID, 10)

	t.Run("join and duplicate join", func(t *testing.T) {
		if w := doJSON(t, router, http.MethodPost, path+"/join", nil, 7, "Иван"); w.Code != http.StatusNoContent {
			t.Fatalf("join: expected 204, got %d", w.Code)
		}
		// Duplicate joins are silent no-ops.
		if w := doJSON(t, router, http.MethodPost, path+"/join", nil, 7, "Иван"); w.Code != http.StatusNoContent {
			t.Fatalf("duplicate join: expected 204, got %d", w.Code)
		}

		w := doJSON(t, router, http.MethodGet, path, nil, 0, "")
		got := decodeEvent(t, w)
		if got.CurrentParticipants != 1 || len(got.Participants) != 1 {
			t.Errorf("expected 1 participant, got count=%d len=%d", got.CurrentParticipants, len(got.Participants))
		}
	})

	t.Run("update is owner-only", func(t *testing.T) {
		upd := map[string]interface{}{"title": "X"}
		if w := doJSON(t, router, http.MethodPatch, path, upd, 7, "Иван"); w.Code != http.StatusForbidden {
			t.Fatalf("non-owner update: expected 403, got %d", w.Code)
		}
		w := doJSON(t, router, http.MethodPatch, path, upd, 4, "Алексей")
		if w.Code != http.StatusOK {
			t.Fatalf("owner update: expected 200, got %d", w.Code)
		}
		if got := decodeEvent(t, w); got.Title != "X" {
			t.Errorf("title not updated: %q", got.Title)
		}
	})

	t.Run("profile stats", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/profile/stats", nil, 7, "Иван")
		var env struct {
			Data struct {
				Organized int `json:"organized"`
				Joined    int `json:"joined"`
			} `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatal(err)
		}
		if env.Data.Organized != 0 || env.Data.Joined != 1 {
			t.Errorf("expected organized=0 joined=1, got %+v", env.Data)
		}
	})

	t.Run("delete is owner-only and final", func(t *testing.T) {
		if w := doJSON(t, router, http.MethodDelete, path, nil, 7, "Иван"); w.Code != http.StatusForbidden {
			t.Fatalf("non-owner delete: expected 403, got %d", w.Code)
		}
		if w := doJSON(t, router, http.MethodDelete, path, nil, 4, "Алексей"); w.Code != http.StatusNoContent {
			t.Fatalf("owner delete: expected 204, got %d", w.Code)
		}
		if w := doJSON(t, router, http.MethodGet, path, nil, 0, ""); w.Code != http.StatusNotFound {
			t.Errorf("deleted event still served: %d", w.Code)
		}
	})
}

func TestHandlerListFilters(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	st.Create(ctx, models.Event{ID: 1, Title: "Moscow run", City: "Москва", IsFree: true,
		Organizer: models.Organizer{ID: 4, Type: models.OrganizerUser, Name: "A"}})
	st.Create(ctx, models.Event{ID: 2, Title: "Kazan ride", City: "Казань", IsFree: false, Price: 2500,
		Organizer: models.Organizer{ID: 5, Type: models.OrganizerUser, Name: "B"}})

	w := doJSON(t, router, http.MethodGet, "/events?city="+
		"%D0%9C%D0%BE%D1%81%D0%BA%D0%B2%D0%B0", nil, 0, "")
	var env struct {
		Data []models.Event `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data) != 1 || env.Data[0].ID != 1 {
		t.Errorf("city filter failed: %+v", env.Data)
	}

	w = doJSON(t, router, http.MethodGet, "/events?price_from=1000", nil, 0, "")
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data) != 1 || env.Data[0].ID != 2 {
		t.Errorf("price_from filter failed: %+v", env.Data)
	}

	w = doJSON(t, router, http.MethodGet, "/events?price_to=1000", nil, 0, "")
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data) != 1 || env.Data[0].ID != 1 {
		t.Errorf("price_to filter failed: %+v", env.Data)
	}

	w = doJSON(t, router, http.MethodGet, "/events", nil, 0, "")
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data) != 2 {
		t.Errorf("expected 2 events unfiltered, got %d", len(env.Data))
	}
}

func TestHandlerSyncStatus(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/sync/status", nil, 0, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var env struct {
		Data struct {
			DeviceID string `json:"device_id"`
			Backend  string `json:"backend"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.DeviceID != "device-test" || env.Data.Backend != "memory" {
		t.Errorf("unexpected sync status: %+v", env.Data)
	}
}
