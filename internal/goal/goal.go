// Package goal содержит расчёт дневной нормы потребления воды.
// Это чистая функция-коллаборатор: фасад трекера её не вызывает,
// цель вычисляется вызывающей стороной до обновления профиля.
package goal

// Границы формулы: базовые 35 мл на килограмм веса, поправка на возраст,
// минимум полтора литра в день.
const (
	millilitersPerKg   = 35.0
	seniorAdjustmentML = -200.0
	minorAdjustmentML  = 200.0
	minGoalLiters      = 1.5
)

// DailyGoalLiters возвращает дневную норму воды в литрах для указанных
// веса и возраста.
func DailyGoalLiters(weightKg float64, ageYears int) float64 {
	base := weightKg * millilitersPerKg

	switch {
	case ageYears > 65:
		base += seniorAdjustmentML
	case ageYears < 18:
		base += minorAdjustmentML
	}

	liters := base / 1000
	if liters < minGoalLiters {
		return minGoalLiters
	}
	return liters
}
