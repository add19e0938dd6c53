package models

import "time"

// EventFilters narrows a listing. Zero-valued fields do not filter.
// Filtering is evaluated client-side over the full listing; there is
// no pagination.
type EventFilters struct {
	City        string     `json:"city,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	OrganizerID int64      `json:"organizer,omitempty"`
	PriceFrom   *float64   `json:"price_from,omitempty"`
	PriceTo     *float64   `json:"price_to,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	IsFree      *bool      `json:"is_free,omitempty"`
	IsTraining  *bool      `json:"is_training,omitempty"`
	SportType   string     `json:"sport_type,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
}

// Matches reports whether the event passes every set filter.
func (f EventFilters) Matches(e *Event) bool {
	if f.City != "" && e.City != f.City {
		return false
	}
	if f.DateFrom != nil && e.StartDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && e.StartDate.After(*f.DateTo) {
		return false
	}
	if f.OrganizerID != 0 && e.Organizer.ID != f.OrganizerID {
		return false
	}
	if f.PriceFrom != nil && e.Price < *f.PriceFrom {
		return false
	}
	if f.PriceTo != nil && e.Price > *f.PriceTo {
		return false
	}
	if f.IsFree != nil && e.IsFree != *f.IsFree {
		return false
	}
	if f.IsTraining != nil && e.IsTraining != *f.IsTraining {
		return false
	}
	if f.SportType != "" && e.SportType != f.SportType {
		return false
	}
	if f.Difficulty != "" && e.Difficulty != f.Difficulty {
		return false
	}
	// Tag order is irrelevant for matching; every requested tag must
	// be present on the event.
	for _, want := range f.Tags {
		found := false
		for _, tag := range e.Tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
