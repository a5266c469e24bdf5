// Package validation содержит функции валидации входных данных.
package validation

import (
	"math"

	"github.com/mmeshcher/waterwise-system/internal/model"
)

// IsValidAmount проверяет, что объём приёма воды — конечное положительное число.
func IsValidAmount(amountMilliliters float64) bool {
	if math.IsNaN(amountMilliliters) || math.IsInf(amountMilliliters, 0) {
		return false
	}
	return amountMilliliters > 0
}

// ValidatePolicy проверяет корректность настроек напоминаний:
// интервал в пределах допустимого диапазона.
func ValidatePolicy(p model.ReminderPolicy) bool {
	if p.IntervalMinutes < model.MinReminderInterval || p.IntervalMinutes > model.MaxReminderInterval {
		return false
	}
	return true
}

// ValidateProfile проверяет корректность профиля пользователя:
// вес, рост и возраст должны быть положительными.
func ValidateProfile(p model.UserProfile) bool {
	return p.WeightKg > 0 && p.HeightCm > 0 && p.AgeYears > 0
}
