// Package ledger реализует журнал приёмов воды с агрегацией по суткам.
package ledger

import (
	"errors"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/waterwise-system/internal/model"
	"github.com/mmeshcher/waterwise-system/internal/validation"
)

// ErrInvalidAmount возвращается при попытке записать неположительный
// или нечисловой объём воды.
var ErrInvalidAmount = errors.New("intake amount must be a positive finite number")

// Ledger хранит события приёма воды в порядке добавления.
// Record — единственная мутирующая операция; события никогда не изменяются.
type Ledger struct {
	now    func() time.Time
	events []model.IntakeEvent
}

// New создаёт пустой журнал. Функция now используется для простановки
// времени события; nil означает time.Now.
func New(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

// Record фиксирует приём воды указанного объёма в миллилитрах и возвращает
// созданное событие. Объём хранится в литрах. Два вызова с одинаковым объёмом
// создают два разных события: каждый вызов — отдельный реальный приём.
func (l *Ledger) Record(amountMilliliters float64) (model.IntakeEvent, error) {
	if !validation.IsValidAmount(amountMilliliters) {
		return model.IntakeEvent{}, ErrInvalidAmount
	}

	ev := model.IntakeEvent{
		ID:           uuid.NewString(),
		AmountLiters: amountMilliliters / 1000,
		RecordedAt:   l.now(),
	}
	l.events = append(l.events, ev)
	return ev, nil
}

// EventsOn возвращает ленивую последовательность событий за указанные сутки
// (по местному времени) в порядке добавления.
func (l *Ledger) EventsOn(day time.Time) iter.Seq[model.IntakeEvent] {
	target := model.DayOf(day)
	return func(yield func(model.IntakeEvent) bool) {
		for _, ev := range l.events {
			if !model.DayOf(ev.RecordedAt).Equal(target) {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// TotalOn возвращает суммарный объём в литрах за указанные сутки.
// Для суток без событий возвращается 0.
func (l *Ledger) TotalOn(day time.Time) float64 {
	var total float64
	for ev := range l.EventsOn(day) {
		total += ev.AmountLiters
	}
	return total
}

// All возвращает копию всех событий журнала в порядке добавления.
// Используется адаптером персистентности при сериализации.
func (l *Ledger) All() []model.IntakeEvent {
	out := make([]model.IntakeEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len возвращает количество событий в журнале.
func (l *Ledger) Len() int {
	return len(l.events)
}

// Replace заменяет содержимое журнала загруженными событиями.
// Вызывается один раз при старте после чтения хранилища.
func (l *Ledger) Replace(events []model.IntakeEvent) {
	l.events = make([]model.IntakeEvent, len(events))
	copy(l.events, events)
}

// DayTotal содержит суммарный объём за одни сутки.
type DayTotal struct {
	Day         time.Time
	TotalLiters float64
}

// TotalsByDay возвращает суммарные объёмы по суткам за всю историю журнала,
// от новых суток к старым.
func (l *Ledger) TotalsByDay() []DayTotal {
	totals := make(map[time.Time]float64)
	var order []time.Time

	for _, ev := range l.events {
		day := model.DayOf(ev.RecordedAt)
		if _, ok := totals[day]; !ok {
			order = append(order, day)
		}
		totals[day] += ev.AmountLiters
	}

	res := make([]DayTotal, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		day := order[i]
		res = append(res, DayTotal{Day: day, TotalLiters: totals[day]})
	}
	return res
}
