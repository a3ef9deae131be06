package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

const userColumns = `id, first_name, last_name, email, password_hash, user_group, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Group,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &user, nil
}

// SaveUser создаёт нового пользователя.
func (t *Tx) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users(id, first_name, last_name, email, password_hash, user_group, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := t.tx.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Group,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapErr(op, err)
	}

	return nil
}

// UserByEmail находит пользователя по email.
func (t *Tx) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(t.tx.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return user, nil
}

// UserByID находит пользователя по ID.
func (t *Tx) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.UserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return user, nil
}

// UpdateUser выполняет частичный апдейт: меняет только заданные поля
// и всегда сдвигает updated_at = now().
func (t *Tx) UpdateUser(ctx context.Context, id uuid.UUID, update models.UserUpdate) (*models.User, error) {
	const op = "storage.postgres.UpdateUser"

	sets := []string{"updated_at = now()"}
	args := []any{id}

	if update.FirstName != nil {
		args = append(args, *update.FirstName)
		sets = append(sets, fmt.Sprintf("first_name = $%d", len(args)))
	}

	if update.LastName != nil {
		args = append(args, *update.LastName)
		sets = append(sets, fmt.Sprintf("last_name = $%d", len(args)))
	}

	if update.PasswordHash != nil {
		args = append(args, *update.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), userColumns)

	user, err := scanUser(t.tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(op, err)
	}

	return user, nil
}

// DeleteUser удаляет пользователя.
func (t *Tx) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteUser"

	tag, err := t.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
