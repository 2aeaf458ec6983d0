package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/micro-ha/hotspot-monitor/internal/http/handlers"
)

const requestTimeout = 20 * time.Second

// NewRouter builds full HTTP routing tree for the backend API.
func NewRouter(api *handlers.API) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON)
	r.Use(StripIngressPrefix)
	r.Use(RequestLogger(api))

	r.With(middleware.Timeout(requestTimeout)).Get("/healthz", api.Health)
	r.Route("/api", func(apiRouter chi.Router) {
		// The event stream is long-lived and must not inherit the request timeout.
		apiRouter.Get("/events", api.Events)

		apiRouter.Group(func(apiRouter chi.Router) {
			apiRouter.Use(middleware.Timeout(requestTimeout))

			apiRouter.Get("/session", api.GetSession)
			apiRouter.Post("/session", api.Login)
			apiRouter.Delete("/session", api.Logout)

			apiRouter.Get("/state", api.State)
			apiRouter.Post("/refresh", api.Refresh)
			apiRouter.Get("/system", api.SystemInfo)

			apiRouter.Get("/users/active", api.ListActiveUsers)
			apiRouter.Get("/users/active/{id}", func(w http.ResponseWriter, r *http.Request) {
				api.GetActiveUser(w, r, chi.URLParam(r, "id"))
			})
			apiRouter.Delete("/users/active/{id}", func(w http.ResponseWriter, r *http.Request) {
				api.LogoutActiveUser(w, r, chi.URLParam(r, "id"))
			})

			apiRouter.Get("/users", api.ListUsers)
			apiRouter.Post("/users", api.CreateUser)
			apiRouter.Delete("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
				api.DeleteUser(w, r, chi.URLParam(r, "id"))
			})

			apiRouter.Get("/profiles", api.ListProfiles)
		})
	})
	return r
}

// RunServer starts and gracefully stops HTTP server with context cancellation.
func RunServer(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
