// Package handler содержит HTTP-обработчики API трекера потребления воды.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/waterwise-system/internal/goal"
	"github.com/mmeshcher/waterwise-system/internal/ledger"
	"github.com/mmeshcher/waterwise-system/internal/middleware"
	"github.com/mmeshcher/waterwise-system/internal/model"
	"github.com/mmeshcher/waterwise-system/internal/scheduler"
	"github.com/mmeshcher/waterwise-system/internal/validation"
)

// Service определяет контракт фасада трекера, используемый HTTP-обработчиками.
type Service interface {
	AddIntake(ctx context.Context, amountMilliliters float64) (model.IntakeEvent, error)
	TodayTotal() float64
	TodayEvents() []model.IntakeEvent
	History() []ledger.DayTotal
	Profile() model.UserProfile
	UpdateProfile(ctx context.Context, p model.UserProfile)
	ReminderPolicy() model.ReminderPolicy
	UpdateReminderPolicy(ctx context.Context, p model.ReminderPolicy)
	SchedulerState() scheduler.State
}

// Handler реализует HTTP-обработчики API трекера.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

type sessionRequest struct {
	Password string `json:"password"`
}

// Login выпускает сессию владельца по паролю.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.authMiddleware.Enabled() {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !h.authMiddleware.CheckPassword(req.Password) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w); err != nil {
		h.logger.Error("set auth cookie error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type intakeRequest struct {
	AmountML float64 `json:"amount_ml"`
}

type eventResponse struct {
	ID           string  `json:"id"`
	AmountLiters float64 `json:"amount_liters"`
	RecordedAt   string  `json:"recorded_at"`
}

type intakeResponse struct {
	Event            eventResponse `json:"event"`
	TodayTotalLiters float64       `json:"today_total_liters"`
}

// AddIntake фиксирует приём воды указанного объёма в миллилитрах.
func (h *Handler) AddIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	ev, err := h.service.AddIntake(r.Context(), req.AmountML)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		h.logger.Error("add intake error", zap.Error(err), zap.Float64("amount_ml", req.AmountML))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := intakeResponse{
		Event: eventResponse{
			ID:           ev.ID,
			AmountLiters: ev.AmountLiters,
			RecordedAt:   ev.RecordedAt.Format(time.RFC3339),
		},
		TodayTotalLiters: h.service.TodayTotal(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode intake response", zap.Error(err))
	}
}

type todayResponse struct {
	TotalLiters float64         `json:"total_liters"`
	GoalLiters  float64         `json:"goal_liters"`
	Events      []eventResponse `json:"events"`
}

// GetToday возвращает события и суммарный объём за текущие сутки.
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	events := h.service.TodayEvents()

	resp := todayResponse{
		TotalLiters: h.service.TodayTotal(),
		GoalLiters:  h.service.Profile().DailyGoalLiters,
		Events:      make([]eventResponse, 0, len(events)),
	}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventResponse{
			ID:           ev.ID,
			AmountLiters: ev.AmountLiters,
			RecordedAt:   ev.RecordedAt.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

type historyDayResponse struct {
	Date        string  `json:"date"`
	TotalLiters float64 `json:"total_liters"`
}

// GetHistory возвращает суммарные объёмы по суткам, от новых к старым.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history := h.service.History()

	if len(history) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]historyDayResponse, 0, len(history))
	for _, day := range history {
		resp = append(resp, historyDayResponse{
			Date:        day.Day.Format("2006-01-02"),
			TotalLiters: day.TotalLiters,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// GetProfile возвращает профиль владельца.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.service.Profile()); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

type profileRequest struct {
	Name     string  `json:"name"`
	WeightKg float64 `json:"weight_kg"`
	HeightCm float64 `json:"height_cm"`
	AgeYears int     `json:"age_years"`
}

// UpdateProfile целиком заменяет профиль владельца. Дневная цель
// пересчитывается здесь, до передачи фасаду.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	profile := model.UserProfile{
		Name:            req.Name,
		WeightKg:        req.WeightKg,
		HeightCm:        req.HeightCm,
		AgeYears:        req.AgeYears,
		DailyGoalLiters: goal.DailyGoalLiters(req.WeightKg, req.AgeYears),
	}

	if !validation.ValidateProfile(profile) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	h.service.UpdateProfile(r.Context(), profile)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

type remindersResponse struct {
	model.ReminderPolicy
	State scheduler.State `json:"state"`
}

// GetReminders возвращает политику напоминаний и производное состояние планировщика.
func (h *Handler) GetReminders(w http.ResponseWriter, r *http.Request) {
	resp := remindersResponse{
		ReminderPolicy: h.service.ReminderPolicy(),
		State:          h.service.SchedulerState(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// UpdateReminders целиком заменяет политику напоминаний.
func (h *Handler) UpdateReminders(w http.ResponseWriter, r *http.Request) {
	var policy model.ReminderPolicy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.ValidatePolicy(policy) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	h.service.UpdateReminderPolicy(r.Context(), policy)

	resp := remindersResponse{
		ReminderPolicy: h.service.ReminderPolicy(),
		State:          h.service.SchedulerState(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

// Health отвечает на проверку живости сервиса.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
