// handlers — HTTP-обработчики каталога. Каждый обработчик возвращает
// error; ответ об ошибке рендерит конвейер (middleware.Pipeline).
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/sportsmap-api/internal/http/errors"
	"github.com/pribylovaa/sportsmap-api/internal/service"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля
// и хвост после объекта.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", apierrors.ErrInvalidBody)
	}

	return nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return service.ParseID(chi.URLParam(r, "id"))
}

// Ping — проверка доступности без авторизации.
func (h *Handlers) Ping(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
