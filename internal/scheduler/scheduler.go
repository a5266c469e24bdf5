// Package scheduler реализует планировщик напоминаний о питье воды.
//
// Планировщик — машина состояний Idle/Armed: при включённой политике и текущем
// времени внутри активного окна взводится повторяющийся таймер, на каждый тик
// которого формируется намерение уведомления. Срабатывание мгновенно, отдельного
// удерживаемого состояния у него нет.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/waterwise-system/internal/model"
	"github.com/mmeshcher/waterwise-system/internal/notify"
)

// Тексты напоминания, которые получает приёмник уведомлений.
const (
	reminderTitle = "Time to drink water!"
	reminderBody  = "Stay hydrated for a healthier life."
)

// Clock выдаёт текущее время. Интерфейс позволяет тестам управлять временем.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock возвращает часы, основанные на системном времени.
func SystemClock() Clock { return systemClock{} }

// State описывает производное состояние планировщика. Оно не сохраняется
// и всегда пересчитывается из политики и текущего времени.
type State struct {
	TimerActive bool       `json:"timer_active"`
	NextFireAt  *time.Time `json:"next_fire_at,omitempty"`
}

// Scheduler управляет единственным повторяющимся таймером напоминаний.
// В любой момент живёт не более одного таймера: перед взведением нового
// предыдущий синхронно останавливается.
type Scheduler struct {
	clock  Clock
	sink   notify.Sink
	logger *zap.SugaredLogger

	// period выделен в поле, чтобы тесты могли сократить интервал таймера.
	period func(model.ReminderPolicy) time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	stateMu    sync.Mutex
	armed      bool
	nextFireAt time.Time
}

// New создаёт планировщик. Часы nil означают системное время,
// приёмник nil — отсутствие механизма уведомлений (тики при этом не падают).
func New(clock Clock, sink notify.Sink, logger *zap.SugaredLogger) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		clock:  clock,
		sink:   sink,
		logger: logger,
		period: func(p model.ReminderPolicy) time.Duration {
			return time.Duration(p.IntervalMinutes) * time.Minute
		},
	}
}

// Evaluate — чистая функция решения: таймер должен быть взведён, если политика
// включена и момент now попадает в окно [ActiveStart, ActiveEnd] тех же суток.
// Окно не переходит через полночь: при ActiveEnd раньше ActiveStart оно пусто.
func Evaluate(policy model.ReminderPolicy, now time.Time) bool {
	if !policy.Enabled {
		return false
	}

	start := policy.ActiveStart.On(now)
	end := policy.ActiveEnd.On(now)

	return !now.Before(start) && !now.After(end)
}

// Apply приводит планировщик в соответствие новой политике: действующий таймер
// отменяется всегда, новый взводится только если Evaluate разрешает.
// Пропущенные тики не навёрстываются, накопленный дрейф не переносится.
//
// Окно активности проверяется только здесь и больше нигде: уже взведённый
// таймер о границе окна не знает и продолжит срабатывать до следующего
// изменения политики или перезапуска процесса.
func (s *Scheduler) Apply(policy model.ReminderPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	now := s.clock.Now()
	if !Evaluate(policy, now) {
		return
	}

	period := s.period(policy)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.setState(true, now.Add(period))

	go s.run(ctx, policy, period, done)

	if s.logger != nil {
		s.logger.Infow("reminder timer armed",
			"interval_minutes", policy.IntervalMinutes,
			"window", policy.ActiveStart.String()+"-"+policy.ActiveEnd.String(),
		)
	}
}

// Stop отменяет действующий таймер, если он есть, и дожидается его завершения.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done

	s.cancel = nil
	s.done = nil
	s.setState(false, time.Time{})
}

// State возвращает текущее производное состояние планировщика.
func (s *Scheduler) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	st := State{TimerActive: s.armed}
	if s.armed {
		next := s.nextFireAt
		st.NextFireAt = &next
	}
	return st
}

func (s *Scheduler) setState(armed bool, nextFireAt time.Time) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.armed = armed
	s.nextFireAt = nextFireAt
}

func (s *Scheduler) run(ctx context.Context, policy model.ReminderPolicy, period time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			intent := onTick(policy)
			if s.sink != nil {
				s.sink.Present(intent)
			}
			s.setState(true, s.clock.Now().Add(period))
		}
	}
}

// onTick формирует намерение уведомления для одного срабатывания таймера.
// Планировщик сам ничего не отображает и не проигрывает — только описывает.
func onTick(policy model.ReminderPolicy) notify.Intent {
	return notify.Intent{
		Title:     reminderTitle,
		Body:      reminderBody,
		PlaySound: policy.SoundEnabled,
	}
}
