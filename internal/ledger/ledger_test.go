package ledger

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mmeshcher/waterwise-system/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecord_ConvertsToLiters(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)
	l := New(fixedClock(now))

	ev, err := l.Record(330)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if ev.AmountLiters != 0.33 {
		t.Fatalf("AmountLiters = %v, want 0.33", ev.AmountLiters)
	}
	if !ev.RecordedAt.Equal(now) {
		t.Fatalf("RecordedAt = %v, want %v", ev.RecordedAt, now)
	}
	if ev.ID == "" {
		t.Fatalf("event id must not be empty")
	}
}

func TestRecord_DistinctEventsForEqualAmounts(t *testing.T) {
	l := New(nil)

	a, err := l.Record(250)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	b, err := l.Record(250)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}

	if a.ID == b.ID {
		t.Fatalf("two records must produce distinct ids, got %s twice", a.ID)
	}
	if l.Len() != 2 {
		t.Fatalf("ledger length = %d, want 2", l.Len())
	}
}

func TestRecord_InvalidAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{name: "negative", amount: -5},
		{name: "zero", amount: 0},
		{name: "NaN", amount: math.NaN()},
		{name: "infinity", amount: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(nil)

			_, err := l.Record(tt.amount)
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("Record(%v) error = %v, want ErrInvalidAmount", tt.amount, err)
			}
			if l.Len() != 0 {
				t.Fatalf("ledger must stay unchanged after rejected record")
			}
		})
	}
}

func TestTotalOn_SumsOnlyRequestedDay(t *testing.T) {
	day := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)
	current := day
	l := New(func() time.Time { return current })

	if _, err := l.Record(200); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	current = day.Add(5 * time.Hour)
	if _, err := l.Record(330); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	current = day.AddDate(0, 0, 1)
	if _, err := l.Record(500); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	got := math.Round(l.TotalOn(day)*100) / 100
	if got != 0.53 {
		t.Fatalf("TotalOn = %v, want 0.53", got)
	}
}

func TestTotalOn_EmptyDayIsZero(t *testing.T) {
	l := New(nil)

	if total := l.TotalOn(time.Now()); total != 0 {
		t.Fatalf("TotalOn for empty ledger = %v, want 0", total)
	}
}

func TestEventsOn_PreservesOrderAndRestarts(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)
	l := New(fixedClock(now))

	amounts := []float64{200, 330, 500}
	for _, a := range amounts {
		if _, err := l.Record(a); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	// Последовательность можно обходить повторно, порядок — порядок добавления.
	for pass := 0; pass < 2; pass++ {
		i := 0
		for ev := range l.EventsOn(now) {
			want := amounts[i] / 1000
			if ev.AmountLiters != want {
				t.Fatalf("pass %d event %d = %v, want %v", pass, i, ev.AmountLiters, want)
			}
			i++
		}
		if i != len(amounts) {
			t.Fatalf("pass %d yielded %d events, want %d", pass, i, len(amounts))
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	l := New(nil)
	if _, err := l.Record(200); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	all := l.All()
	all[0].AmountLiters = 99

	if l.All()[0].AmountLiters == 99 {
		t.Fatalf("All must return a copy, ledger was mutated")
	}
}

func TestReplace_RestoresLoadedEvents(t *testing.T) {
	day := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)
	src := New(fixedClock(day))
	if _, err := src.Record(200); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if _, err := src.Record(330); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	restored := New(fixedClock(day))
	restored.Replace(src.All())

	if restored.Len() != 2 {
		t.Fatalf("restored length = %d, want 2", restored.Len())
	}
	if restored.TotalOn(day) != src.TotalOn(day) {
		t.Fatalf("restored total = %v, want %v", restored.TotalOn(day), src.TotalOn(day))
	}
}

func TestTotalsByDay_NewestFirst(t *testing.T) {
	first := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)
	second := first.AddDate(0, 0, 1)

	current := first
	l := New(func() time.Time { return current })

	if _, err := l.Record(200); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if _, err := l.Record(300); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	current = second
	if _, err := l.Record(500); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	totals := l.TotalsByDay()
	if len(totals) != 2 {
		t.Fatalf("totals length = %d, want 2", len(totals))
	}
	if !totals[0].Day.Equal(model.DayOf(second)) || totals[0].TotalLiters != 0.5 {
		t.Fatalf("newest day total = %+v, want day %v total 0.5", totals[0], model.DayOf(second))
	}
	if !totals[1].Day.Equal(model.DayOf(first)) || totals[1].TotalLiters != 0.5 {
		t.Fatalf("oldest day total = %+v, want day %v total 0.5", totals[1], model.DayOf(first))
	}
}
