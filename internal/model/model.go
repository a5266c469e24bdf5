// Package model содержит доменные сущности трекера потребления воды.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// IntakeEvent описывает один зафиксированный приём воды.
// Событие неизменяемо после создания и принадлежит журналу приёмов.
type IntakeEvent struct {
	ID           string    `json:"id"`
	AmountLiters float64   `json:"amount_liters"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// UserProfile описывает профиль владельца трекера.
// Профиль заменяется целиком при каждом обновлении.
type UserProfile struct {
	Name            string  `json:"name"`
	WeightKg        float64 `json:"weight_kg"`
	HeightCm        float64 `json:"height_cm"`
	AgeYears        int     `json:"age_years"`
	DailyGoalLiters float64 `json:"daily_goal_liters"`
}

// ReminderPolicy описывает настройки напоминаний о питье воды.
// Политика заменяется целиком при каждом обновлении.
type ReminderPolicy struct {
	Enabled         bool    `json:"enabled"`
	IntervalMinutes int     `json:"interval_minutes"`
	ActiveStart     DayTime `json:"active_start"`
	ActiveEnd       DayTime `json:"active_end"`
	SoundEnabled    bool    `json:"sound_enabled"`
}

// Границы допустимого интервала напоминаний в минутах.
const (
	MinReminderInterval = 15
	MaxReminderInterval = 480
)

// DayTime представляет время суток без даты (часы и минуты по местному времени).
type DayTime struct {
	Hour   int
	Minute int
}

// ParseDayTime разбирает время суток в формате "HH:MM".
func ParseDayTime(s string) (DayTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return DayTime{}, fmt.Errorf("parse day time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return DayTime{}, fmt.Errorf("day time %q out of range", s)
	}
	return DayTime{Hour: h, Minute: m}, nil
}

// String возвращает время суток в формате "HH:MM".
func (d DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// MinuteOfDay возвращает количество минут с начала суток.
func (d DayTime) MinuteOfDay() int {
	return d.Hour*60 + d.Minute
}

// On возвращает момент в указанных сутках, соответствующий этому времени суток.
func (d DayTime) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), d.Hour, d.Minute, 0, 0, day.Location())
}

// MarshalJSON сериализует время суток строкой "HH:MM".
func (d DayTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON разбирает время суток из строки "HH:MM".
func (d *DayTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDayTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DayOf возвращает начало суток для указанного момента по местному времени.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultProfile возвращает профиль по умолчанию для первого запуска.
func DefaultProfile() UserProfile {
	return UserProfile{
		WeightKg:        70,
		HeightCm:        170,
		AgeYears:        25,
		DailyGoalLiters: 2.5,
	}
}

// DefaultPolicy возвращает настройки напоминаний по умолчанию:
// каждые два часа с 08:00 до 22:00, со звуком.
func DefaultPolicy() ReminderPolicy {
	return ReminderPolicy{
		Enabled:         true,
		IntervalMinutes: 120,
		ActiveStart:     DayTime{Hour: 8},
		ActiveEnd:       DayTime{Hour: 22},
		SoundEnabled:    true,
	}
}
