// Package notify описывает доставку напоминаний и пользовательских подтверждений.
// Ядро трекера только формирует намерение уведомления; отрисовка и звук —
// забота конкретной реализации приёмника.
package notify

import "go.uber.org/zap"

// Intent описывает уведомление, которое нужно показать пользователю.
type Intent struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	PlaySound bool   `json:"play_sound"`
}

// Sink принимает намерения уведомлений для отображения.
type Sink interface {
	Present(intent Intent)
}

// Ack принимает информационные подтверждения действий пользователя.
type Ack interface {
	Notify(message string)
}

// LogSink выводит уведомления в журнал. Используется, когда среда
// не располагает настоящим механизмом уведомлений.
type LogSink struct {
	logger *zap.SugaredLogger
}

// NewLogSink создаёт приёмник уведомлений поверх журнала.
func NewLogSink(logger *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: logger}
}

// Present выводит уведомление в журнал.
func (s *LogSink) Present(intent Intent) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Infow("reminder", "title", intent.Title, "body", intent.Body, "sound", intent.PlaySound)
}

// LogAck выводит подтверждения действий в журнал.
type LogAck struct {
	logger *zap.SugaredLogger
}

// NewLogAck создаёт приёмник подтверждений поверх журнала.
func NewLogAck(logger *zap.SugaredLogger) *LogAck {
	return &LogAck{logger: logger}
}

// Notify выводит подтверждение в журнал.
func (a *LogAck) Notify(message string) {
	if a == nil || a.logger == nil {
		return
	}
	a.logger.Infow("ack", "message", message)
}
