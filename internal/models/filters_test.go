package models

import (
	"testing"
	"time"
)

func TestEventFiltersMatches(t *testing.T) {
	free := true
	paid := false
	e := Event{
		ID:         1,
		Title:      "Evening run",
		StartDate:  time.Date(2026, 9, 10, 19, 0, 0, 0, time.UTC),
		City:       "Москва",
		Price:      0,
		IsFree:     true,
		IsTraining: true,
		SportType:  "Бег",
		Difficulty: DifficultyBeginner,
		Tags:       []string{"бег", "вечер", "начинающие"},
		Organizer:  Organizer{ID: 4, Type: OrganizerUser, Name: "Алексей"},
	}

	cases := []struct {
		name string
		f    EventFilters
		want bool
	}{
		{"empty filter matches everything", EventFilters{}, true},
		{"city match", EventFilters{City: "Москва"}, true},
		{"city mismatch", EventFilters{City: "Казань"}, false},
		{"free flag match", EventFilters{IsFree: &free}, true},
		{"free flag mismatch", EventFilters{IsFree: &paid}, false},
		{"sport and difficulty", EventFilters{SportType: "Бег", Difficulty: DifficultyBeginner}, true},
		{"difficulty mismatch", EventFilters{Difficulty: DifficultyAdvanced}, false},
		{"organizer match", EventFilters{OrganizerID: 4}, true},
		{"organizer mismatch", EventFilters{OrganizerID: 5}, false},
		{"tags subset in any order", EventFilters{Tags: []string{"вечер", "бег"}}, true},
		{"missing tag", EventFilters{Tags: []string{"бег", "утро"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.Matches(&e); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("date window", func(t *testing.T) {
		from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
		if !(EventFilters{DateFrom: &from, DateTo: &to}).Matches(&e) {
			t.Error("event inside window rejected")
		}
		late := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
		if (EventFilters{DateFrom: &late}).Matches(&e) {
			t.Error("event before date_from accepted")
		}
	})
}
