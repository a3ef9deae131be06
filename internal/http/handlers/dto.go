package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/sportsmap-api/internal/models"
)

type statusResponse struct {
	Status string `json:"status"`
	Email  string `json:"email,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// sessionResponse — ответ на вход и ротацию.
// AccessTokenExpiresIn — момент истечения access-токена, секунды Unix.
type sessionResponse struct {
	AccessToken          string    `json:"access_token"`
	RefreshToken         string    `json:"refresh_token"`
	AccessTokenExpiresIn int64     `json:"access_token_expires_in"`
	ID                   uuid.UUID `json:"id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Email                string    `json:"email"`
	Group                *string   `json:"group"`
}

func newSessionResponse(u *models.User, s *models.Session) sessionResponse {
	return sessionResponse{
		AccessToken:          s.AccessToken,
		RefreshToken:         s.RefreshToken,
		AccessTokenExpiresIn: s.ExpiresAt.Unix(),
		ID:                   u.ID,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Email:                u.Email,
		Group:                u.Group,
	}
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

// userResponse никогда не содержит хэш пароля.
type userResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Group     *string   `json:"group"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Group:     u.Group,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type hiddenRequest struct {
	Hidden *bool `json:"hidden"`
}

type facilityListResponse struct {
	Count int               `json:"count"`
	Data  []models.Facility `json:"data"`
}

func newFacilityList(list []models.Facility) facilityListResponse {
	if list == nil {
		list = []models.Facility{}
	}
	return facilityListResponse{Count: len(list), Data: list}
}
