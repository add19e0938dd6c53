// Package web is the thin view-layer HTTP surface over the event
// store. It renders whatever the store returns and forwards operation
// calls; it never mutates the collection directly.
package web

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaliyaya/RunConnect/internal/middleware"
	"github.com/zaliyaya/RunConnect/internal/models"
	"github.com/zaliyaya/RunConnect/internal/store"
	"github.com/zaliyaya/RunConnect/pkg/response"
)

// Handler serves the event endpoints.
type Handler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewHandler creates an event handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, logger: logger}
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title                string              `json:"title" binding:"required"`
	Description          string              `json:"description"`
	StartDate            string              `json:"start_date" binding:"required"`
	EndDate              *string             `json:"end_date"`
	Location             string              `json:"location"`
	City                 string              `json:"city"`
	Address              string              `json:"address"`
	Coordinates          *models.Coordinates `json:"coordinates"`
	MaxParticipants      int                 `json:"max_participants"`
	Price                float64             `json:"price"`
	Currency             string              `json:"currency"`
	IsFree               bool                `json:"is_free"`
	RegistrationRequired bool                `json:"registration_required"`
	RegistrationDeadline *string             `json:"registration_deadline"`
	Tags                 []string            `json:"tags"`
	Images               []string            `json:"images"`

	IsTraining bool              `json:"is_training"`
	EventType  models.EventType  `json:"event_type"`
	SportType  string            `json:"sport_type"`
	Distance   float64           `json:"distance"`
	Pace       string            `json:"pace"`
	Duration   int               `json:"duration"`
	Difficulty models.Difficulty `json:"difficulty"`
	Equipment  []string          `json:"equipment"`
	Notes      string            `json:"notes"`

	// Organizer overrides the default user organizer, e.g. for club
	// or company events.
	Organizer *models.Organizer `json:"organizer"`
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// List handles GET /events with optional filter query parameters.
func (h *Handler) List(c *gin.Context) {
	f, err := filtersFromQuery(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, h.store.Filter(f))
}

func filtersFromQuery(c *gin.Context) (models.EventFilters, error) {
	f := models.EventFilters{
		City:       c.Query("city"),
		SportType:  c.Query("sport_type"),
		Difficulty: models.Difficulty(c.Query("difficulty")),
		Tags:       c.QueryArray("tag"),
	}
	if v := c.Query("is_free"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.IsFree = &b
	}
	if v := c.Query("is_training"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.IsTraining = &b
	}
	if v := c.Query("price_from"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, err
		}
		f.PriceFrom = &p
	}
	if v := c.Query("price_to"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, err
		}
		f.PriceTo = &p
	}
	if v := c.Query("organizer"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, err
		}
		f.OrganizerID = id
	}
	if v := c.Query("date_from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, err
		}
		f.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, err
		}
		f.DateTo = &t
	}
	return f, nil
}

// Get handles GET /events/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, ok := h.store.GetByID(id)
	if !ok {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Create handles POST /events. The acting user becomes the organizer
// unless the body asserts a club/company/trainer organizer.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user, ok := middleware.ActingUser(c)
	if !ok && req.Organizer == nil {
		response.Unauthorized(c, "identity required")
		return
	}

	startDate, err := parseTime(req.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date")
		return
	}
	e := models.Event{
		Title:                req.Title,
		Description:          req.Description,
		StartDate:            startDate,
		Location:             req.Location,
		City:                 req.City,
		Address:              req.Address,
		Coordinates:          req.Coordinates,
		MaxParticipants:      req.MaxParticipants,
		Price:                req.Price,
		Currency:             req.Currency,
		IsFree:               req.IsFree,
		RegistrationRequired: req.RegistrationRequired,
		Tags:                 req.Tags,
		Images:               req.Images,
		Status:               models.StatusUpcoming,
		IsTraining:           req.IsTraining,
		EventType:            req.EventType,
		SportType:            req.SportType,
		Distance:             req.Distance,
		Pace:                 req.Pace,
		Duration:             req.Duration,
		Difficulty:           req.Difficulty,
		Equipment:            req.Equipment,
		Notes:                req.Notes,
	}
	if req.EndDate != nil {
		t, err := parseTime(*req.EndDate)
		if err != nil {
			response.BadRequest(c, "invalid end_date")
			return
		}
		e.EndDate = &t
	}
	if req.RegistrationDeadline != nil {
		t, err := parseTime(*req.RegistrationDeadline)
		if err != nil {
			response.BadRequest(c, "invalid registration_deadline")
			return
		}
		e.RegistrationDeadline = &t
	}
	if req.Organizer != nil {
		e.Organizer = *req.Organizer
	} else {
		name := user.FirstName
		if user.LastName != "" {
			name += " " + user.LastName
		}
		e.Organizer = models.Organizer{
			ID:     user.ID,
			Type:   models.OrganizerUser,
			Name:   name,
			Avatar: user.Avatar,
		}
	}

	created := h.store.Create(c.Request.Context(), e)
	response.Created(c, created)
}

// Update handles PATCH /events/:id (owner only).
func (h *Handler) Update(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, ok := h.store.GetByID(id)
	if !ok {
		response.NotFound(c, "event not found")
		return
	}
	user, ok := middleware.ActingUser(c)
	if !ok || !e.Organizer.OwnedBy(user.ID) {
		response.Forbidden(c, "only the organizer can edit this event")
		return
	}

	var upd store.EventUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.store.Update(c.Request.Context(), id, upd)
	updated, _ := h.store.GetByID(id)
	response.OK(c, updated)
}

// Delete handles DELETE /events/:id (owner only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, ok := h.store.GetByID(id)
	if !ok {
		response.NotFound(c, "event not found")
		return
	}
	user, ok := middleware.ActingUser(c)
	if !ok || !e.Organizer.OwnedBy(user.ID) {
		response.Forbidden(c, "only the organizer can delete this event")
		return
	}
	h.store.Delete(c.Request.Context(), id)
	response.NoContent(c)
}

// Join handles POST /events/:id/join. Joining twice or joining an
// absent event is a silent no-op; capacity is not enforced here.
func (h *Handler) Join(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	user, ok := middleware.ActingUser(c)
	if !ok {
		response.Unauthorized(c, "identity required")
		return
	}
	h.store.Join(c.Request.Context(), id, user)
	response.NoContent(c)
}

// Leave handles POST /events/:id/leave. Leaving an event the user is
// not on is a silent no-op.
func (h *Handler) Leave(c *gin.Context) {
	id, err := eventID(c)
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	user, ok := middleware.ActingUser(c)
	if !ok {
		response.Unauthorized(c, "identity required")
		return
	}
	h.store.Leave(c.Request.Context(), id, user.ID)
	response.NoContent(c)
}

// ProfileStats handles GET /profile/stats: how many events the acting
// user organizes and has joined, recomputed from the live collection.
func (h *Handler) ProfileStats(c *gin.Context) {
	user, ok := middleware.ActingUser(c)
	if !ok {
		response.Unauthorized(c, "identity required")
		return
	}
	response.OK(c, gin.H{
		"organized": h.store.CountOrganized(user.ID),
		"joined":    h.store.CountJoined(user.ID),
	})
}

// SyncStatus handles GET /sync/status: this context's identity and
// reconciliation state.
func (h *Handler) SyncStatus(c *gin.Context) {
	response.OK(c, gin.H{
		"device_id":     h.store.DeviceID(),
		"backend":       h.store.BackendKind(),
		"last_sync_at":  h.store.LastSyncAt().Format(time.RFC3339),
		"poll_interval": h.store.PollInterval().String(),
	})
}

func eventID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
