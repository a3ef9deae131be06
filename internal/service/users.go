package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/log"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

// UpdateUserInput — изменения собственного профиля; nil-поля не меняются.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateSelf обновляет профиль авторизованного пользователя.
func (s *Service) UpdateSelf(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	const op = "service.users.UpdateSelf"

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var update models.UserUpdate

	if in.FirstName != nil {
		v, err := requireText("first_name", *in.FirstName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		update.FirstName = &v
	}

	if in.LastName != nil {
		v, err := requireText("last_name", *in.LastName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		update.LastName = &v
	}

	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		update.PasswordHash = &hash
	}

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := tx.UpdateUser(ctx, user.ID, update)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// DeleteSelf удаляет учётную запись авторизованного пользователя.
func (s *Service) DeleteSelf(ctx context.Context) error {
	const op = "service.users.DeleteSelf"

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_deleted", slog.String("user_id", user.ID.String()))

	return nil
}

// UserByID возвращает пользователя по ID.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.UserByID"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := tx.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
