package store

import (
	"time"

	"github.com/zaliyaya/RunConnect/internal/models"
)

// EventUpdate is the partial-update payload for Store.Update. Nil
// fields are left untouched. The roster and the derived participant
// count have no fields here: they change only through Join and Leave.
type EventUpdate struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	StartDate   *time.Time          `json:"start_date,omitempty"`
	EndDate     *time.Time          `json:"end_date,omitempty"`
	Location    *string             `json:"location,omitempty"`
	City        *string             `json:"city,omitempty"`
	Address     *string             `json:"address,omitempty"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`

	MaxParticipants *int     `json:"max_participants,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Currency        *string  `json:"currency,omitempty"`
	IsFree          *bool    `json:"is_free,omitempty"`

	RegistrationRequired *bool      `json:"registration_required,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	Tags   []string            `json:"tags,omitempty"`
	Images []string            `json:"images,omitempty"`
	Status *models.EventStatus `json:"status,omitempty"`

	IsTraining *bool              `json:"is_training,omitempty"`
	EventType  *models.EventType  `json:"event_type,omitempty"`
	SportType  *string            `json:"sport_type,omitempty"`
	Distance   *float64           `json:"distance,omitempty"`
	Pace       *string            `json:"pace,omitempty"`
	Duration   *int               `json:"duration,omitempty"`
	Difficulty *models.Difficulty `json:"difficulty,omitempty"`
	Equipment  []string           `json:"equipment,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
}

func (u EventUpdate) apply(e *models.Event) {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.StartDate != nil {
		e.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		e.EndDate = u.EndDate
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.City != nil {
		e.City = *u.City
	}
	if u.Address != nil {
		e.Address = *u.Address
	}
	if u.Coordinates != nil {
		e.Coordinates = u.Coordinates
	}
	if u.MaxParticipants != nil {
		e.MaxParticipants = *u.MaxParticipants
	}
	if u.Price != nil {
		e.Price = *u.Price
	}
	if u.Currency != nil {
		e.Currency = *u.Currency
	}
	if u.IsFree != nil {
		e.IsFree = *u.IsFree
	}
	if u.RegistrationRequired != nil {
		e.RegistrationRequired = *u.RegistrationRequired
	}
	if u.RegistrationDeadline != nil {
		e.RegistrationDeadline = u.RegistrationDeadline
	}
	if u.Tags != nil {
		e.Tags = u.Tags
	}
	if u.Images != nil {
		e.Images = u.Images
	}
	if u.Status != nil {
		e.Status = *u.Status
	}
	if u.IsTraining != nil {
		e.IsTraining = *u.IsTraining
	}
	if u.EventType != nil {
		e.EventType = *u.EventType
	}
	if u.SportType != nil {
		e.SportType = *u.SportType
	}
	if u.Distance != nil {
		e.Distance = *u.Distance
	}
	if u.Pace != nil {
		e.Pace = *u.Pace
	}
	if u.Duration != nil {
		e.Duration = *u.Duration
	}
	if u.Difficulty != nil {
		e.Difficulty = *u.Difficulty
	}
	if u.Equipment != nil {
		e.Equipment = u.Equipment
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
}
