package models

import "time"

// Session — пара токенов, выданная принципалу при входе или ротации.
//
// Описание:
//   - AccessToken — подписанный токен для заголовка Authorization: Bearer;
//   - RefreshToken — подписанный токен, несущий копию AccessToken;
//   - IssuedAt/ExpiresAt: момент выпуска и истечения access-токена (UTC,
//     точность до секунды).
type Session struct {
	Principal    string
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}
