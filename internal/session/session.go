// session реализует протокол сессий без серверного состояния:
// выпуск пары access/refresh, проверку живости access-токена и ротацию
// пары по refresh-токену со строгой проверкой привязки.
//
// Основные аспекты:
//   - access-токен несёт {email, created_in, expires_in};
//   - refresh-токен несёт {email, created_in, access_token}: полную копию
//     access-токена, выпущенного вместе с ним;
//   - пары нигде не сохраняются; валидность целиком вычисляется из подписи
//     и равенства полей. Исключение: необязательный Denylist для отзыва;
//   - Manager неизменяем после конфигурирования и безопасен для
//     конкурентного использования.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/sportsmap-api/internal/models"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/log"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/redact"
	"github.com/pribylovaa/sportsmap-api/internal/token"
)

// Ключи claims.
const (
	claimEmail       = "email"
	claimCreatedIn   = "created_in"
	claimExpiresIn   = "expires_in"
	claimAccessToken = "access_token"
)

// DefaultTTL — срок жизни access-токена по умолчанию.
const DefaultTTL = 20 * time.Minute

var (
	// ErrInvalidToken — токен не декодируется или не проходит семантические
	// проверки. На защищённых маршрутах даёт HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidAccessToken — при ротации не прошёл access-токен.
	// Транспорт: HTTP 400 "wrong access token".
	ErrInvalidAccessToken = fmt.Errorf("%w: wrong access token", ErrInvalidToken)

	// ErrInvalidRefreshToken — при ротации не прошёл refresh-токен или привязка.
	// Транспорт: HTTP 400 "wrong refresh token".
	ErrInvalidRefreshToken = fmt.Errorf("%w: wrong refresh token", ErrInvalidToken)

	// ErrRevocationUnavailable — отзыв запрошен, но Denylist не сконфигурирован.
	// Транспорт: HTTP 501.
	ErrRevocationUnavailable = errors.New("session revocation is not configured")
)

// Codec — то, что Manager требует от кодека токенов.
type Codec interface {
	Encode(claims token.Claims) (string, error)
	Decode(tokenStr string) (token.Claims, error)
}

// Denylist хранит отозванные сессии по ключу (principal, issued_at).
type Denylist interface {
	// Revoke помечает сессию отозванной на ttl.
	Revoke(ctx context.Context, principal string, issuedAt int64, ttl time.Duration) error
	// IsRevoked сообщает, отозвана ли сессия.
	IsRevoked(ctx context.Context, principal string, issuedAt int64) (bool, error)
}

// Manager выпускает и ротирует пары токенов.
type Manager struct {
	codec         Codec
	ttl           time.Duration
	now           func() time.Time
	denylist      Denylist // может быть nil: отзыв отключён
	revocationTTL time.Duration
}

// New создаёт Manager. ttl <= 0 заменяется на DefaultTTL.
func New(codec Codec, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Manager{
		codec: codec,
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetDenylist подключает список отозванных сессий (опционально).
// retention — сколько хранится запись об отзыве; refresh-токен сам
// по себе не истекает, поэтому retention должен покрывать разумный
// горизонт использования refresh-токена.
func (m *Manager) SetDenylist(d Denylist, retention time.Duration) {
	m.denylist = d
	m.revocationTTL = retention
}

// TTL возвращает срок жизни access-токена.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// CreateSession выпускает новую пару токенов для principal.
//
// Поведение:
//   - now фиксируется один раз, expires_at = now + TTL (секунды Unix);
//   - access: {email, created_in: now, expires_in};
//   - refresh: {email, created_in: now, access_token};
//   - ничего не сохраняется.
func (m *Manager) CreateSession(principal string) (*models.Session, error) {
	const op = "session.session.CreateSession"

	now := m.now().Unix()
	expiresAt := now + int64(m.ttl/time.Second)

	access, err := m.codec.Encode(token.Claims{
		claimEmail:     principal,
		claimCreatedIn: now,
		claimExpiresIn: expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := m.codec.Encode(token.Claims{
		claimEmail:       principal,
		claimCreatedIn:   now,
		claimAccessToken: access,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Session{
		Principal:    principal,
		AccessToken:  access,
		RefreshToken: refresh,
		IssuedAt:     time.Unix(now, 0).UTC(),
		ExpiresAt:    time.Unix(expiresAt, 0).UTC(),
	}, nil
}

// RefreshSession ротирует пару: проверяет привязку refresh к access
// и выпускает новую пару через CreateSession.
//
// Поведение:
//   - access не декодируется - ErrInvalidAccessToken;
//   - refresh не декодируется - ErrInvalidRefreshToken;
//   - привязка (вложенный access == переданный побайтно, равные created_in
//     и email) не выполнена - ErrInvalidRefreshToken;
//   - срок access-токена НЕ проверяется: просроченный, но корректно
//     привязанный access ротируется;
//   - пара отозвана (если подключён Denylist) - ErrInvalidRefreshToken.
func (m *Manager) RefreshSession(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	const op = "session.session.RefreshSession"

	lg := log.From(ctx)

	accessClaims, err := m.codec.Decode(accessToken)
	if err != nil {
		lg.Warn("session_refresh_rejected", slog.String("reason", "access_decode"))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAccessToken)
	}

	accessEmail, okEmail := accessClaims.String(claimEmail)
	accessCreated, okCreated := accessClaims.Int64(claimCreatedIn)
	if !okEmail || !okCreated {
		lg.Warn("session_refresh_rejected", slog.String("reason", "access_claims"))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAccessToken)
	}

	refreshClaims, err := m.codec.Decode(refreshToken)
	if err != nil {
		lg.Warn("session_refresh_rejected", slog.String("reason", "refresh_decode"))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	embedded, _ := refreshClaims.String(claimAccessToken)
	refreshEmail, _ := refreshClaims.String(claimEmail)
	refreshCreated, okCreated := refreshClaims.Int64(claimCreatedIn)

	if embedded != accessToken || !okCreated || refreshCreated != accessCreated || refreshEmail != accessEmail {
		lg.Warn("session_refresh_rejected",
			slog.String("reason", "binding"),
			slog.String("email", redact.Email(accessEmail)),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	revoked, err := m.isRevoked(ctx, accessEmail, accessCreated)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		lg.Warn("session_refresh_rejected",
			slog.String("reason", "revoked"),
			slog.String("email", redact.Email(accessEmail)),
		)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRefreshToken)
	}

	return m.CreateSession(accessEmail)
}

// CheckLiveness сообщает, жив ли access-токен: now <= expires_in.
// Равенство считается живым. Токен, который не декодируется,
// даёт ErrInvalidToken. Отозванная сессия не жива.
func (m *Manager) CheckLiveness(ctx context.Context, accessToken string) (bool, error) {
	const op = "session.session.CheckLiveness"

	claims, err := m.codec.Decode(accessToken)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	expiresAt, ok := claims.Int64(claimExpiresIn)
	if !ok {
		return false, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if m.now().Unix() > expiresAt {
		return false, nil
	}

	if m.denylist == nil {
		return true, nil
	}

	email, _ := claims.String(claimEmail)
	createdIn, _ := claims.Int64(claimCreatedIn)

	revoked, err := m.isRevoked(ctx, email, createdIn)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return !revoked, nil
}

// PrincipalOf извлекает идентификатор принципала из access-токена.
func (m *Manager) PrincipalOf(accessToken string) (string, error) {
	const op = "session.session.PrincipalOf"

	claims, err := m.codec.Decode(accessToken)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	email, ok := claims.String(claimEmail)
	if !ok || email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return email, nil
}

// Revoke отзывает сессию, к которой принадлежит access-токен:
// после этого ни access, ни парный refresh не принимаются.
func (m *Manager) Revoke(ctx context.Context, accessToken string) error {
	const op = "session.session.Revoke"

	if m.denylist == nil {
		return fmt.Errorf("%s: %w", op, ErrRevocationUnavailable)
	}

	claims, err := m.codec.Decode(accessToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	email, okEmail := claims.String(claimEmail)
	createdIn, okCreated := claims.Int64(claimCreatedIn)
	if !okEmail || !okCreated {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := m.denylist.Revoke(ctx, email, createdIn, m.revocationTTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("session_revoked", slog.String("email", redact.Email(email)))

	return nil
}

func (m *Manager) isRevoked(ctx context.Context, principal string, issuedAt int64) (bool, error) {
	if m.denylist == nil {
		return false, nil
	}

	return m.denylist.IsRevoked(ctx, principal, issuedAt)
}
