package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/sportsmap-api/internal/http/errors"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/log"
	"github.com/pribylovaa/sportsmap-api/internal/pkg/redact"
	"github.com/pribylovaa/sportsmap-api/internal/session"
)

// SessionVerifier — то, что Authorize требует от менеджера сессий.
type SessionVerifier interface {
	CheckLiveness(ctx context.Context, accessToken string) (bool, error)
	PrincipalOf(accessToken string) (string, error)
}

type accessTokenKey struct{}

// AccessTokenFrom возвращает bearer-токен, прошедший Authorize.
func AccessTokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(accessTokenKey{}).(string)
	return t
}

// Authorize пропускает запрос только с живым access-токеном.
//
// Шаги:
//  1. заголовок Authorization обязателен;
//  2. схема ровно "Bearer" (с учётом регистра);
//  3. после схемы должен быть непустой токен;
//  4. CheckLiveness без ошибки и с true;
//  5. PrincipalOf без ошибки;
//  6. принципал кладётся в контекст (session.WithPrincipal), токен рядом;
//  7. результат next возвращается как есть.
//
// Любой отказ - errors.ErrUnauthorized (401 без подробностей).
func Authorize(sessions SessionVerifier) Stage {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			ctx := r.Context()
			lg := log.From(ctx)

			header := r.Header.Get("Authorization")
			if header == "" {
				lg.Debug("auth_rejected", slog.String("reason", "no_header"))
				return apierrors.ErrUnauthorized
			}

			scheme, credential, _ := strings.Cut(header, " ")
			if scheme != "Bearer" {
				lg.Debug("auth_rejected", slog.String("reason", "scheme"))
				return apierrors.ErrUnauthorized
			}

			credential = strings.TrimSpace(credential)
			if credential == "" {
				lg.Debug("auth_rejected", slog.String("reason", "no_credential"))
				return apierrors.ErrUnauthorized
			}

			alive, err := sessions.CheckLiveness(ctx, credential)
			if err != nil {
				if !errors.Is(err, session.ErrInvalidToken) {
					lg.Warn("auth_liveness_failed", slog.String("err", err.Error()))
				}
				lg.Debug("auth_rejected", slog.String("reason", "invalid_token"))
				return apierrors.ErrUnauthorized
			}
			if !alive {
				lg.Debug("auth_rejected", slog.String("reason", "expired"))
				return apierrors.ErrUnauthorized
			}

			principal, err := sessions.PrincipalOf(credential)
			if err != nil {
				lg.Debug("auth_rejected", slog.String("reason", "principal"))
				return apierrors.ErrUnauthorized
			}

			ctx = session.WithPrincipal(ctx, principal)
			ctx = context.WithValue(ctx, accessTokenKey{}, credential)
			ctx = log.With(ctx, slog.String("email", redact.Email(principal)))

			return next(w, r.WithContext(ctx))
		}
	}
}
