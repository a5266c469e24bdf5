package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mmeshcher/waterwise-system/internal/model"
)

// SQLiteStore хранит журнал приёмов и документы трекера в локальном файле SQLite.
// Это хранилище по умолчанию: трекер работает без внешней СУБД.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore открывает (или создаёт) файл базы и инициализирует схему.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	eventsTable := `
	CREATE TABLE IF NOT EXISTS intake_events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		amount_liters REAL NOT NULL,
		recorded_at TEXT NOT NULL
	);`
	if _, err := s.db.Exec(eventsTable); err != nil {
		return fmt.Errorf("create intake_events: %w", err)
	}

	documentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`
	if _, err := s.db.Exec(documentsTable); err != nil {
		return fmt.Errorf("create documents: %w", err)
	}

	return nil
}

// Close закрывает файл базы.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AppendEvent дозаписывает событие приёма воды в журнал.
func (s *SQLiteStore) AppendEvent(ctx context.Context, ev model.IntakeEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO intake_events (id, amount_liters, recorded_at) VALUES (?, ?, ?)`,
		ev.ID, ev.AmountLiters, ev.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert intake event: %w", err)
	}
	return nil
}

// LoadEvents возвращает весь журнал приёмов в порядке добавления.
func (s *SQLiteStore) LoadEvents(ctx context.Context) ([]model.IntakeEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount_liters, recorded_at FROM intake_events ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("select intake events: %w", err)
	}
	defer rows.Close()

	var events []model.IntakeEvent
	for rows.Next() {
		var (
			ev         model.IntakeEvent
			recordedAt string
		)
		if err := rows.Scan(&ev.ID, &ev.AmountLiters, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan intake event: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		ev.RecordedAt = ts.Local()

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

// SaveDocument сохраняет документ под указанным ключом, затирая предыдущую версию.
func (s *SQLiteStore) SaveDocument(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, string(payload), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// LoadDocument возвращает документ по ключу.
func (s *SQLiteStore) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE key = ?`,
		key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return []byte(payload), nil
}
