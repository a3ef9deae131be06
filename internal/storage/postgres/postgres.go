// postgres реализует storage.Storage поверх pgxpool.
// Каждая единица работы выполняется в отдельной pgx.Tx из пула.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

type Storage struct {
	db *pgxpool.Pool
}

// Options — необязательные параметры пула.
type Options struct {
	MaxConns int32
}

// New создаёт новое подключение к PostgreSQL.
func New(ctx context.Context, dbURL string, opts Options) (*Storage, error) {
	const op = "storage.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Begin открывает транзакцию уровня READ COMMITTED.
func (s *Storage) Begin(ctx context.Context) (storage.Tx, error) {
	const op = "storage.postgres.Begin"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Tx{tx: tx}, nil
}

// Ping проверяет соединение с БД.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.db.Close()
}

// Tx — единица работы поверх pgx.Tx.
// Не предназначена для конкурентного использования.
type Tx struct {
	tx pgx.Tx
}

// Commit фиксирует транзакцию.
func (t *Tx) Commit(ctx context.Context) error {
	const op = "storage.postgres.Commit"

	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Rollback откатывает транзакцию. Повторный откат после Commit/Rollback
// не считается ошибкой.
func (t *Tx) Rollback(ctx context.Context) error {
	const op = "storage.postgres.Rollback"

	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// mapErr переводит ошибки pgx в ошибки пакета storage.
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// Проверка на соответствие интерфейсам.
var (
	_ storage.Storage = (*Storage)(nil)
	_ storage.Tx      = (*Tx)(nil)
)
