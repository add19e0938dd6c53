package models

import "time"

// EventStatus is the lifecycle status of an event. It is display-only:
// the store never transitions it automatically based on time.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// Difficulty of a training event.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// EventType tags what kind of gathering an event is.
type EventType string

const (
	EventTypeTraining    EventType = "training"
	EventTypeCompetition EventType = "competition"
	EventTypeSeminar     EventType = "seminar"
	EventTypeMasterclass EventType = "masterclass"
	EventTypePerformance EventType = "performance"
)

// OrganizerType identifies what kind of entity organized an event.
type OrganizerType string

const (
	OrganizerUser    OrganizerType = "user"
	OrganizerClub    OrganizerType = "club"
	OrganizerTrainer OrganizerType = "trainer"
	OrganizerCompany OrganizerType = "company"
)

// Organizer is the embedded reference to whoever created an event.
type Organizer struct {
	ID     int64         `json:"id"`
	Type   OrganizerType `json:"type"`
	Name   string        `json:"name"`
	Avatar string        `json:"avatar,omitempty"`
}

// OwnedBy reports whether the acting user owns the event this
// organizer record belongs to. Only user-organized events are owned.
func (o Organizer) OwnedBy(userID int64) bool {
	return o.Type == OrganizerUser && o.ID == userID
}

// Coordinates is an optional geolocation for an event.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Event is a single organized gathering (training, competition, ...).
// CurrentParticipants is derived: it always equals len(Participants)
// after any store operation completes, and is never set directly.
type Event struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	StartDate   time.Time    `json:"start_date"`
	EndDate     *time.Time   `json:"end_date,omitempty"`
	Location    string       `json:"location"`
	City        string       `json:"city"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`

	// MaxParticipants is advisory only; 0 means no limit. The store
	// does not enforce it on join.
	MaxParticipants     int `json:"max_participants,omitempty"`
	CurrentParticipants int `json:"current_participants"`

	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	IsFree   bool    `json:"is_free"`

	RegistrationRequired bool       `json:"registration_required"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	Organizer    Organizer   `json:"organizer"`
	Participants []User      `json:"participants"`
	Tags         []string    `json:"tags,omitempty"`
	Images       []string    `json:"images,omitempty"`
	Status       EventStatus `json:"status"`

	// Training-specific attributes.
	IsTraining bool       `json:"is_training,omitempty"`
	EventType  EventType  `json:"event_type,omitempty"`
	SportType  string     `json:"sport_type,omitempty"`
	Distance   float64    `json:"distance,omitempty"` // kilometers
	Pace       string     `json:"pace,omitempty"`     // e.g. "5:30/km"
	Duration   int        `json:"duration,omitempty"` // minutes
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Equipment  []string   `json:"equipment,omitempty"`
	Notes      string     `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasParticipant reports whether the user is already on the roster.
func (e *Event) HasParticipant(userID int64) bool {
	for _, p := range e.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// EventRoster is the side-table record mapping an event to the ordered
// sequence of users who joined it. Rosters are stored separately from
// events and merged into the Event view on read.
type EventRoster struct {
	EventID      int64  `json:"event_id"`
	Participants []User `json:"participants"`
}
