// Package tracker собирает журнал приёмов, профиль, политику напоминаний
// и планировщик за единым фасадом с сквозной записью в хранилище.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/waterwise-system/internal/ledger"
	"github.com/mmeshcher/waterwise-system/internal/model"
	"github.com/mmeshcher/waterwise-system/internal/notify"
	"github.com/mmeshcher/waterwise-system/internal/repository"
	"github.com/mmeshcher/waterwise-system/internal/scheduler"
	"github.com/mmeshcher/waterwise-system/internal/validation"
)

// Ключи документов в хранилище. Журнал приёмов хранится отдельной
// последовательностью событий.
const (
	DocProfile = "profile"
	DocPolicy  = "policy"
)

// Store описывает контракт доступа к хранилищу, используемый фасадом.
// Хранилище только сериализует и десериализует данные и никогда их не меняет.
type Store interface {
	Close() error
	AppendEvent(ctx context.Context, ev model.IntakeEvent) error
	LoadEvents(ctx context.Context) ([]model.IntakeEvent, error)
	SaveDocument(ctx context.Context, key string, payload []byte) error
	LoadDocument(ctx context.Context, key string) ([]byte, error)
}

// Tracker — единственный владелец журнала, профиля и политики напоминаний.
// Все мутации сериализуются и выполняются до конца без вытеснения.
type Tracker struct {
	store  Store
	sched  *scheduler.Scheduler
	ack    notify.Ack
	logger *zap.SugaredLogger
	clock  scheduler.Clock

	mu      sync.Mutex
	ledger  *ledger.Ledger
	profile model.UserProfile
	policy  model.ReminderPolicy
}

// New создаёт фасад, загружает три документа из хранилища (подставляя значения
// по умолчанию для отсутствующих или повреждённых) и один раз прогоняет оценку
// планировщика по загруженной политике и текущему времени.
//
// Хранилище nil означает работу только в памяти, планировщик nil — отсутствие
// механизма таймеров; и то и другое деградирует молча.
func New(ctx context.Context, store Store, sched *scheduler.Scheduler, ack notify.Ack, clock scheduler.Clock, logger *zap.SugaredLogger) *Tracker {
	if clock == nil {
		clock = scheduler.SystemClock()
	}

	t := &Tracker{
		store:   store,
		sched:   sched,
		ack:     ack,
		logger:  logger,
		clock:   clock,
		ledger:  ledger.New(clock.Now),
		profile: model.DefaultProfile(),
		policy:  model.DefaultPolicy(),
	}

	t.load(ctx)

	if t.sched != nil {
		t.sched.Apply(t.policy)
	}

	return t
}

func (t *Tracker) load(ctx context.Context) {
	if t.store == nil {
		return
	}

	events, err := t.store.LoadEvents(ctx)
	if err != nil {
		t.warn("load intake events", err)
	} else {
		t.ledger.Replace(events)
	}

	if raw, err := t.store.LoadDocument(ctx, DocProfile); err == nil {
		var p model.UserProfile
		if uerr := json.Unmarshal(raw, &p); uerr != nil || !validation.ValidateProfile(p) {
			t.warn("malformed stored profile, using defaults", uerr)
		} else {
			t.profile = p
		}
	} else if !errors.Is(err, repository.ErrDocumentNotFound) {
		t.warn("load profile", err)
	}

	if raw, err := t.store.LoadDocument(ctx, DocPolicy); err == nil {
		var p model.ReminderPolicy
		if uerr := json.Unmarshal(raw, &p); uerr != nil || !validation.ValidatePolicy(p) {
			t.warn("malformed stored reminder policy, using defaults", uerr)
		} else {
			t.policy = p
		}
	} else if !errors.Is(err, repository.ErrDocumentNotFound) {
		t.warn("load reminder policy", err)
	}
}

// Close останавливает планировщик и закрывает хранилище.
func (t *Tracker) Close() error {
	if t.sched != nil {
		t.sched.Stop()
	}
	if t.store != nil {
		return t.store.Close()
	}
	return nil
}

// AddIntake фиксирует приём воды в миллилитрах, дозаписывает событие в
// хранилище и подтверждает запись пользователю. Ошибка записи в хранилище
// не откатывает событие: источником истины для текущей сессии служит память.
func (t *Tracker) AddIntake(ctx context.Context, amountMilliliters float64) (model.IntakeEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ev, err := t.ledger.Record(amountMilliliters)
	if err != nil {
		return model.IntakeEvent{}, err
	}

	if t.store != nil {
		if serr := t.store.AppendEvent(ctx, ev); serr != nil {
			t.warn("persist intake event", serr)
		}
	}

	t.acknowledge(fmt.Sprintf("%g ml recorded", amountMilliliters))
	return ev, nil
}

// UpdateProfile целиком заменяет профиль и сохраняет его. Дневную цель фасад
// не пересчитывает: вызывающая сторона передаёт профиль уже с целью.
func (t *Tracker) UpdateProfile(ctx context.Context, p model.UserProfile) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.profile = p
	t.saveDocument(ctx, DocProfile, p)
	t.acknowledge("profile updated")
}

// UpdateReminderPolicy целиком заменяет политику напоминаний, сохраняет её
// и перевзводит планировщик под новую политику.
func (t *Tracker) UpdateReminderPolicy(ctx context.Context, p model.ReminderPolicy) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.policy = p
	t.saveDocument(ctx, DocPolicy, p)

	if t.sched != nil {
		t.sched.Apply(p)
	}
}

func (t *Tracker) saveDocument(ctx context.Context, key string, doc any) {
	if t.store == nil {
		return
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		t.warn("marshal "+key, err)
		return
	}
	if err := t.store.SaveDocument(ctx, key, payload); err != nil {
		t.warn("persist "+key, err)
	}
}

// TodayTotal возвращает суммарный объём за текущие сутки в литрах.
func (t *Tracker) TodayTotal() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.TotalOn(t.clock.Now())
}

// TodayEvents возвращает события за текущие сутки в порядке добавления.
func (t *Tracker) TodayEvents() []model.IntakeEvent {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res []model.IntakeEvent
	for ev := range t.ledger.EventsOn(t.clock.Now()) {
		res = append(res, ev)
	}
	return res
}

// TotalOn возвращает суммарный объём за указанные сутки в литрах.
func (t *Tracker) TotalOn(day time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.TotalOn(day)
}

// History возвращает суммарные объёмы по суткам, от новых к старым.
func (t *Tracker) History() []ledger.DayTotal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger.TotalsByDay()
}

// Profile возвращает текущий профиль пользователя.
func (t *Tracker) Profile() model.UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile
}

// ReminderPolicy возвращает текущую политику напоминаний.
func (t *Tracker) ReminderPolicy() model.ReminderPolicy {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.policy
}

// SchedulerState возвращает производное состояние планировщика.
func (t *Tracker) SchedulerState() scheduler.State {
	if t.sched == nil {
		return scheduler.State{}
	}
	return t.sched.State()
}

func (t *Tracker) acknowledge(message string) {
	if t.ack != nil {
		t.ack.Notify(message)
	}
}

// warn фиксирует сбой персистентности: предупреждение в журнале и best-effort
// сообщение пользователю. Сбой не считается фатальным и не всплывает наружу.
func (t *Tracker) warn(msg string, err error) {
	if t.logger != nil {
		if err != nil {
			t.logger.Warnw(msg, "error", err.Error())
		} else {
			t.logger.Warnw(msg)
		}
	}
	t.acknowledge("warning: " + msg)
}
