// service содержит бизнес-логику каталога спортивных объектов:
// регистрацию и вход администраторов, ротацию и отзыв сессий,
// управление профилем и CRUD/поиск объектов.
//
// Основные аспекты:
//   - Service не держит состояния запроса; доступ к данным идёт через
//     единицу работы из контекста (storage.TxFrom), которую открывает
//     и фиксирует конвейер запроса;
//   - ошибки возвращаются как sentinel-значения и маппятся транспортом
//     на HTTP-коды (см. комментарии к переменным ниже).
package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/sportsmap-api/internal/session"
)

var (
	// ErrInvalidCredentials — пользователь не найден или пароль не совпал.
	// Транспорт: HTTP 400 "wrong email or password".
	ErrInvalidCredentials = errors.New("wrong email or password")

	// ErrUnauthenticated — токен валиден, но его принципал больше не существует.
	// Транспорт: HTTP 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrEmailTaken — e-mail уже занят другим пользователем.
	// Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUserNotFound — пользователь с таким ID не существует.
	// Транспорт: HTTP 404.
	ErrUserNotFound = errors.New("user not found")

	// ErrFacilityExists — объект с таким именем уже есть.
	// Транспорт: HTTP 409.
	ErrFacilityExists = errors.New("facility with this name already exists")

	// ErrFacilityNotFound — объект с таким ID не существует.
	// Транспорт: HTTP 400 "facility with this id doesn't exist".
	ErrFacilityNotFound = errors.New("facility with this id doesn't exist")

	// ErrInvalidID — идентификатор в пути не является UUID.
	// Транспорт: HTTP 400.
	ErrInvalidID = errors.New("invalid id")

	// ErrValidation — входные данные не прошли проверку.
	// Конкретика в *ValidationError. Транспорт: HTTP 422.
	ErrValidation = errors.New("validation failed")
)

// ValidationError описывает, какое поле не прошло проверку и почему.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Is делает ValidationError сопоставимой с ErrValidation через errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Service описывает бизнес-логику каталога.
type Service struct {
	sessions   *session.Manager
	now        func() time.Time
	bcryptCost int

	// Хэш-заглушка для входа с неизвестным email: сравнение с ним
	// занимает столько же, сколько с настоящим хэшем.
	dummyOnce sync.Once
	dummyHash string
}

// New создаёт новый экземпляр Service.
func New(sessions *session.Manager) *Service {
	return &Service{
		sessions:   sessions,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Sessions возвращает менеджер сессий (нужен middleware авторизации).
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// ParseID разбирает идентификатор из пути запроса.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}

	return id, nil
}
