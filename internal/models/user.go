package models

import (
	"time"

	"github.com/google/uuid"
)

// User — учётная запись администратора каталога.
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Group        *string // группа доступа; nil, если не назначена
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate — частичное обновление собственного профиля.
// nil-поля не меняются. Password содержит уже посчитанный хэш.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	PasswordHash *string
}
