package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/sportsmap-api/internal/http/handlers"
	"github.com/pribylovaa/sportsmap-api/internal/http/middleware"
	"github.com/pribylovaa/sportsmap-api/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string              // например, "/api"; если пустой, роуты регистрируются на корне.
	Metrics  *middleware.Metrics // nil — метрики HTTP не собираются.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, store middleware.TxBeginner, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Recover(),            // ловим паники уже с request_id в логгере
	)
	if opts.Metrics != nil {
		root.Use(opts.Metrics.Middleware())
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	rt := routes{
		h:    handlers.New(svc),
		auth: middleware.Authorize(svc.Sessions()),
		tx:   middleware.Transaction(store),
		user: middleware.RequireUser(svc),
	}

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		rt.register(sub)
		root.Mount(opts.BasePath, sub)
		return root
	}

	rt.register(root)
	return root
}

type routes struct {
	h    *handlers.Handlers
	auth middleware.Stage
	tx   middleware.Stage
	user middleware.Stage
}

// public — без авторизации, в транзакции.
func (rt routes) public(h middleware.HandlerFunc) http.Handler {
	return middleware.Pipeline(h, rt.tx)
}

// private — авторизация, транзакция и проверка, что пользователь не удалён.
func (rt routes) private(h middleware.HandlerFunc) http.Handler {
	return middleware.Pipeline(h, rt.auth, rt.tx, rt.user)
}

// register — единая точка регистрации всех REST-эндпойнтов.
func (rt routes) register(r chi.Router) {
	h := rt.h

	r.Method(http.MethodGet, "/ping", middleware.Pipeline(h.Ping))
	r.Method(http.MethodGet, "/authping", middleware.Pipeline(h.AuthPing, rt.auth))

	// auth
	for _, prefix := range []string{"/admin", ""} {
		r.Method(http.MethodPost, prefix+"/login", rt.public(h.Login))
		r.Method(http.MethodPost, prefix+"/token/refresh", rt.public(h.RefreshToken))
	}
	r.Method(http.MethodPost, "/admin/logout", middleware.Pipeline(h.Logout, rt.auth))

	// users
	r.Method(http.MethodPost, "/admin/users", rt.public(h.RegisterUser))
	r.Method(http.MethodPut, "/admin/users", rt.private(h.UpdateUser))
	r.Method(http.MethodDelete, "/admin/users", rt.private(h.DeleteUser))
	r.Method(http.MethodGet, "/admin/users/{id}", rt.private(h.GetUser))

	// facilities
	r.Method(http.MethodPost, "/facility", rt.private(h.CreateFacility))
	r.Method(http.MethodGet, "/facility", rt.private(h.ListFacilities))
	r.Method(http.MethodPost, "/facility/search", rt.private(h.SearchFacilities))
	r.Method(http.MethodGet, "/facility/{id}", rt.private(h.GetFacility))
	r.Method(http.MethodPut, "/facility/{id}", rt.private(h.UpdateFacility))
	r.Method(http.MethodDelete, "/facility/{id}", rt.private(h.DeleteFacility))
	r.Method(http.MethodPatch, "/facility/{id}/hidden", rt.private(h.SetFacilityHidden))
}
