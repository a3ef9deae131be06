package middleware

import (
	"net/http"

	apierrors "github.com/pribylovaa/sportsmap-api/internal/http/errors"
)

// HandlerFunc — обработчик, возвращающий ошибку вместо того, чтобы
// самому писать ответ об ошибке.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Stage оборачивает HandlerFunc (авторизация, транзакция и т.п.).
type Stage func(next HandlerFunc) HandlerFunc

// Pipeline собирает стадии вокруг h в порядке перечисления (первая:
// внешняя) и превращает результат в http.Handler: возвращённая ошибка
// рендерится через errors.WriteError.
func Pipeline(h HandlerFunc, stages ...Stage) http.Handler {
	for i := len(stages) - 1; i >= 0; i-- {
		h = stages[i](h)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			apierrors.WriteError(w, r, err)
		}
	})
}
