package middleware

import (
	"context"
	"net/http"
)

// UserResolver подтверждает, что принципал из контекста всё ещё существует,
// и возвращает контекст с найденной записью.
type UserResolver interface {
	ResolveUser(ctx context.Context) (context.Context, error)
}

// RequireUser ставится после Authorize и Transaction: запись принципала
// читается в той же единице работы, что и сам обработчик. Ошибка
// резолвера возвращается как есть.
func RequireUser(users UserResolver) Stage {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			ctx, err := users.ResolveUser(r.Context())
			if err != nil {
				return err
			}

			return next(w, r.WithContext(ctx))
		}
	}
}
