package store

import (
	"time"

	"github.com/zaliyaya/RunConnect/internal/models"
)

// SeedEvents returns the demo dataset installed on first-ever use
// when the backend holds no snapshot.
func SeedEvents() []models.Event {
	now := time.Now()
	tomorrow := now.Add(24 * time.Hour)
	morningEnd := tomorrow.Add(90 * time.Minute)
	deadline := now.Add(20 * 24 * time.Hour)
	raceStart := now.Add(30 * 24 * time.Hour)
	raceEnd := raceStart.Add(3 * time.Hour)
	eveningStart := now.Add(3 * 24 * time.Hour)
	eveningEnd := eveningStart.Add(time.Hour)

	return []models.Event{
		{
			ID:                   1,
			Title:                "Утренняя пробежка в парке Горького",
			Description:          "Присоединяйтесь к нашей утренней пробежке! Подходит для всех уровней подготовки.",
			StartDate:            tomorrow,
			EndDate:              &morningEnd,
			Location:             "Парк Горького",
			City:                 "Москва",
			Address:              "ул. Крымский Вал, 9",
			MaxParticipants:      50,
			Price:                0,
			Currency:             "RUB",
			IsFree:               true,
			RegistrationRequired: true,
			Organizer: models.Organizer{
				ID:   1,
				Type: models.OrganizerClub,
				Name: "Беговой клуб \"Стрела\"",
			},
			Tags:      []string{"бег", "утро", "парк"},
			Status:    models.StatusUpcoming,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:                   2,
			Title:                "Полумарафон \"Весенний ветер\"",
			Description:          "Ежегодный полумарафон с живописной трассой по центру города.",
			StartDate:            raceStart,
			EndDate:              &raceEnd,
			Location:             "Центральная площадь",
			City:                 "Москва",
			Address:              "Красная площадь",
			MaxParticipants:      1000,
			Price:                2500,
			Currency:             "RUB",
			IsFree:               false,
			RegistrationRequired: true,
			RegistrationDeadline: &deadline,
			Organizer: models.Organizer{
				ID:   2,
				Type: models.OrganizerCompany,
				Name: "Организаторы марафонов",
			},
			Tags:      []string{"марафон", "соревнования", "весна"},
			Status:    models.StatusUpcoming,
			EventType: models.EventTypeCompetition,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:                   4,
			Title:                "Вечерняя пробежка 5км",
			Description:          "Легкая пробежка в парке. Подходит для начинающих.",
			StartDate:            eveningStart,
			EndDate:              &eveningEnd,
			Location:             "Парк Сокольники",
			City:                 "Москва",
			Address:              "ул. Сокольнический Вал, 1",
			MaxParticipants:      15,
			Price:                0,
			Currency:             "RUB",
			IsFree:               true,
			RegistrationRequired: true,
			Organizer: models.Organizer{
				ID:   4,
				Type: models.OrganizerUser,
				Name: "Алексей Петров",
			},
			Tags:       []string{"бег", "вечер", "начинающие"},
			Status:     models.StatusUpcoming,
			IsTraining: true,
			EventType:  models.EventTypeTraining,
			SportType:  "Бег",
			Distance:   5,
			Pace:       "6:00",
			Duration:   60,
			Difficulty: models.DifficultyBeginner,
			Equipment:  []string{"Кроссовки", "Вода"},
			Notes:      "Приносите с собой воду",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
}
