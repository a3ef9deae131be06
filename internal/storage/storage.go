// storage описывает контракт хранилища пользователей и спортивных объектов.
//
// Вся работа с данными в рамках HTTP-запроса идёт через одну единицу
// работы (Tx), которую открывает конвейер запроса и передаёт дальше
// через context.Context (см. WithTx/TxFrom).
package storage

//go:generate mockgen -source=storage.go -destination=../../mocks/mock_storage.go -package=mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pribylovaa/sportsmap-api/internal/models"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email пользователя, имя объекта).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuery — поиск ссылается на неизвестное поле или несовместимое значение.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNoTx — в контексте нет открытой единицы работы (ошибка сборки конвейера).
	ErrNoTx = errors.New("no transaction in context")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email (без учёта регистра).
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UpdateUser частично обновляет пользователя и возвращает новое состояние.
	UpdateUser(ctx context.Context, id uuid.UUID, update models.UserUpdate) (*models.User, error)
	// DeleteUser удаляет пользователя.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// FacilityStorage выполняет операции над спортивными объектами.
type FacilityStorage interface {
	// SaveFacility создаёт объект; ID и таймстемпы заполняет вызывающий.
	SaveFacility(ctx context.Context, facility *models.Facility) error
	// FacilityByID находит объект по ID.
	FacilityByID(ctx context.Context, id uuid.UUID) (*models.Facility, error)
	// UpdateFacility полностью заменяет изменяемые поля объекта.
	UpdateFacility(ctx context.Context, id uuid.UUID, fields models.FacilityFields) (*models.Facility, error)
	// SetFacilityHidden меняет только признак видимости.
	SetFacilityHidden(ctx context.Context, id uuid.UUID, hidden bool) (*models.Facility, error)
	// DeleteFacility удаляет объект.
	DeleteFacility(ctx context.Context, id uuid.UUID) error
	// ListFacilities возвращает все объекты в порядке создания.
	ListFacilities(ctx context.Context) ([]models.Facility, error)
	// SearchFacilities выполняет поиск с фильтрами, сортировкой и пагинацией.
	SearchFacilities(ctx context.Context, search models.FacilitySearch) ([]models.Facility, error)
}

// Tx — единица работы: все операции видят одни и те же данные
// и фиксируются или откатываются вместе.
type Tx interface {
	UserStorage
	FacilityStorage
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	// Begin открывает новую единицу работы.
	Begin(ctx context.Context) (Tx, error)
	// Ping проверяет доступность БД (readiness).
	Ping(ctx context.Context) error
	Close()
}

type txKey struct{}

// WithTx кладёт единицу работы в контекст.
func WithTx(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom достаёт единицу работы из контекста.
func TxFrom(ctx context.Context) (Tx, error) {
	if tx, ok := ctx.Value(txKey{}).(Tx); ok && tx != nil {
		return tx, nil
	}

	return nil, ErrNoTx
}
