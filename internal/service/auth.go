package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/log"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/redact"
	"github.com/pribylovaa/sportsmap-api/internal/session"
	"github.com/pribylovaa/sportsmap-api/internal/storage"
)

// MinPasswordLength — минимальная длина пароля в рунах.
const MinPasswordLength = 8

// RegisterInput — данные для регистрации администратора.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register регистрирует нового пользователя.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service.auth.Register"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	firstName, err := requireText("first_name", in.FirstName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lastName, err := requireText("last_name", in.LastName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.UserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := tx.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("user_registered",
		slog.String("user_id", user.ID.String()),
		slog.String("email", redact.Email(email)),
	)

	return user, nil
}

// Login выполняет вход по email+пароль и выпускает новую пару токенов.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	const op = "service.auth.Login"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := tx.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			checkPassword(s.dummyPasswordHash(), password)
			log.From(ctx).Warn("login_failed", slog.String("email", redact.Email(email)))
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		log.From(ctx).Warn("login_failed", slog.String("email", redact.Email(email)))
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	sess, err := s.sessions.CreateSession(user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, sess, nil
}

// Refresh ротирует пару токенов. Принципал должен по-прежнему
// существовать, иначе пара считается недействительной по access-токену.
func (s *Service) Refresh(ctx context.Context, accessToken, refreshToken string) (*models.User, *models.Session, error) {
	const op = "service.auth.Refresh"

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	sess, err := s.sessions.RefreshSession(ctx, accessToken, refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := tx.UserByEmail(ctx, sess.Principal)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, session.ErrInvalidAccessToken)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, sess, nil
}

// Logout отзывает текущую сессию.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	const op = "service.auth.Logout"

	if err := s.sessions.Revoke(ctx, accessToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CurrentUser возвращает пользователя авторизованного принципала.
// Принципал ищется в хранилище на каждом запросе и не кэшируется.
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	const op = "service.auth.CurrentUser"

	principal, ok := session.PrincipalFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	if user, ok := ctx.Value(currentUserKey{}).(*models.User); ok && user.Email == principal {
		return user, nil
	}

	tx, err := storage.TxFrom(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := tx.UserByEmail(ctx, principal)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

type currentUserKey struct{}

// ResolveUser проверяет, что принципал запроса существует в хранилище,
// и запоминает его запись в контексте для последующих CurrentUser.
// Удалённый пользователь - ErrUnauthenticated.
func (s *Service) ResolveUser(ctx context.Context) (context.Context, error) {
	const op = "service.auth.ResolveUser"

	user, err := s.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			log.From(ctx).Warn("principal_gone")
		}
		return ctx, fmt.Errorf("%s: %w", op, err)
	}

	return context.WithValue(ctx, currentUserKey{}, user), nil
}

func (s *Service) hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(b), nil
}

// dummyPasswordHash возвращает хэш случайного пароля с текущей стоимостью bcrypt.
func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		var pw [32]byte
		_, _ = rand.Read(pw[:])

		h, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(pw[:])), s.bcryptCost)
		if err == nil {
			s.dummyHash = string(h)
		}
	})

	return s.dummyHash
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет формат email и приводит его к нижнему регистру.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", invalid("email", "is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "has invalid format")
	}

	return strings.ToLower(email), nil
}

// validatePassword: не короче MinPasswordLength рун; bcrypt не принимает больше 72 байт.
func validatePassword(pw string) error {
	switch {
	case pw == "":
		return invalid("password", "is required")
	case len([]rune(pw)) < MinPasswordLength:
		return invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	case len(pw) > 72:
		return invalid("password", "must be at most 72 bytes")
	}

	return nil
}

func requireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalid(field, "is required")
	}

	return v, nil
}
