package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"csv-renamer/internal/config"
	"csv-renamer/internal/handler"
	"csv-renamer/internal/middleware"
	"csv-renamer/internal/service"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	renameHandler *handler.RenameHandler,
	runsHandler *handler.RunsHandler,
	directoryHandler *handler.DirectoryHandler,
	auditHandler *handler.AuditHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(service.RoleAdmin)).Post("/register", authHandler.Register)
			auth.Post("/refresh", authHandler.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", authHandler.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		api.With(authMiddleware.RequireAuth).Post("/mappings/preview", renameHandler.Preview)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(service.RoleOperator, service.RoleAdmin)).Post("/renames", renameHandler.Execute)
		api.With(authMiddleware.RequireAuth).Get("/runs", runsHandler.List)
		api.With(authMiddleware.RequireAuth).Get("/runs/{run_id}", runsHandler.Get)
		api.With(authMiddleware.RequireAuth).Get("/directories", directoryHandler.List)
		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles(service.RoleAdmin)).Get("/audit", auditHandler.List)
	})

	return r
}
