// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает доменную ошибку (sentinel из service/session/storage),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - короткий стабильный код и безопасное message без утечки деталей.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/sportsmap-api/internal/pkg/log"
	"github.com/pribylovaa/sportsmap-api/internal/service"
	"github.com/pribylovaa/sportsmap-api/internal/session"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrUnauthorized — запрос к защищённому маршруту без живой сессии.
	// Ответ 401 без подробностей.
	ErrUnauthorized = stderrors.New("unauthorized")

	// ErrInvalidBody — тело запроса не является корректным JSON ожидаемой формы.
	// Ответ 422.
	ErrInvalidBody = stderrors.New("invalid request body")
)

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func response(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и ответ для фронта.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal, чтобы не
//     послать "200 OK" с телом ошибки;
//   - ошибки сессии при ротации - 400 с текстом "wrong access token" /
//     "wrong refresh token";
//   - ValidationError - 422 с указанием поля;
//   - неизвестная ошибка - 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, response("internal", "internal error")
	}

	var ve *service.ValidationError

	switch {
	case stderrors.Is(err, ErrUnauthorized), stderrors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, response("unauthenticated", "unauthenticated")
	case stderrors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, response("invalid_credentials", "wrong email or password")
	case stderrors.Is(err, session.ErrInvalidAccessToken):
		return http.StatusBadRequest, response("invalid_access_token", "wrong access token")
	case stderrors.Is(err, session.ErrInvalidRefreshToken):
		return http.StatusBadRequest, response("invalid_refresh_token", "wrong refresh token")
	case stderrors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized, response("unauthenticated", "unauthenticated")
	case stderrors.Is(err, service.ErrFacilityNotFound):
		return http.StatusBadRequest, response("facility_not_found", "facility with this id doesn't exist")
	case stderrors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, response("not_found", "user not found")
	case stderrors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest, response("invalid_argument", "invalid id")
	case stderrors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, response("already_exists", "email already taken")
	case stderrors.Is(err, service.ErrFacilityExists):
		return http.StatusConflict, response("already_exists", "facility with this name already exists")
	case stderrors.As(err, &ve):
		return http.StatusUnprocessableEntity, response("validation_failed", ve.Error())
	case stderrors.Is(err, service.ErrValidation), stderrors.Is(err, ErrInvalidBody):
		return http.StatusUnprocessableEntity, response("validation_failed", "invalid request body")
	case stderrors.Is(err, session.ErrRevocationUnavailable):
		return http.StatusNotImplemented, response("unimplemented", "session revocation is not enabled")
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, response("canceled", "canceled")
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, response("deadline_exceeded", "deadline exceeded")
	default:
		return http.StatusInternalServerError, response("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
// Ошибки 5xx логируются целиком: наружу уходит только код.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	if status >= http.StatusInternalServerError && err != nil {
		log.From(r.Context()).Error("request_failed",
			slog.Int("status", status),
			slog.String("err", err.Error()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
