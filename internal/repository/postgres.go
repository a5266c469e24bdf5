// Package repository содержит реализации хранилища данных трекера.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/waterwise-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDocumentNotFound возвращается, если документ с указанным ключом ещё не сохранялся.
var ErrDocumentNotFound = errors.New("document not found")

// PostgresStore хранит журнал приёмов и документы трекера в PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище и инициализирует схему БД через миграции.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (s *PostgresStore) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// AppendEvent дозаписывает событие приёма воды в журнал.
func (s *PostgresStore) AppendEvent(ctx context.Context, ev model.IntakeEvent) error {
	return s.withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO intake_events (id, amount_liters, recorded_at) VALUES ($1, $2, $3)`,
			ev.ID, ev.AmountLiters, ev.RecordedAt,
		)
		if err != nil {
			return fmt.Errorf("insert intake event: %w", err)
		}
		return nil
	})
}

// LoadEvents возвращает весь журнал приёмов в порядке добавления.
func (s *PostgresStore) LoadEvents(ctx context.Context) ([]model.IntakeEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, amount_liters, recorded_at
		 FROM intake_events
		 ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("select intake events: %w", err)
	}
	defer rows.Close()

	var events []model.IntakeEvent
	for rows.Next() {
		var ev model.IntakeEvent
		if err := rows.Scan(&ev.ID, &ev.AmountLiters, &ev.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan intake event: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

// SaveDocument сохраняет документ под указанным ключом, затирая предыдущую версию.
func (s *PostgresStore) SaveDocument(ctx context.Context, key string, payload []byte) error {
	return s.withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO documents (key, payload, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
			key, payload,
		)
		if err != nil {
			return fmt.Errorf("upsert document: %w", err)
		}
		return nil
	})
}

// LoadDocument возвращает документ по ключу.
func (s *PostgresStore) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM documents WHERE key = $1`,
		key,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return payload, nil
}
