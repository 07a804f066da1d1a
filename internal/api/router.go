package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "orgchart/internal/api/context"
	"orgchart/internal/api/handlers"
	"orgchart/internal/api/middleware"
	"orgchart/internal/pkg/errors"
	"orgchart/internal/platform/auth"
)

type Dependencies struct {
	AuthHandler     *handlers.AuthHandler
	ReportHandler   *handlers.ReportHandler
	RefreshHandler  *handlers.RefreshHandler
	SettingsHandler *handlers.SettingsHandler
	HealthHandler   *handlers.HealthHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", wrap(deps.HealthHandler.Check))

	// Authentication
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))

	authMid := deps.AuthMiddleware

	// Hierarchy and reports (read-only snapshot views)
	router.GET("/api/v1/hierarchy", wrap(deps.ReportHandler.Hierarchy))
	router.GET("/api/v1/employees", wrap(deps.ReportHandler.Employees))
	router.GET("/api/v1/reports/missing-managers", wrap(deps.ReportHandler.MissingManagers))
	router.GET("/api/v1/reports/disabled-users", wrap(deps.ReportHandler.DisabledUsers))
	router.GET("/api/v1/reports/disabled-licensed", wrap(deps.ReportHandler.DisabledLicensed))
	router.GET("/api/v1/reports/recently-disabled", wrap(deps.ReportHandler.RecentlyDisabled))
	router.GET("/api/v1/reports/recently-hired", wrap(deps.ReportHandler.RecentlyHired))
	router.GET("/api/v1/reports/excluded-users", wrap(deps.ReportHandler.ExcludedUsers))
	router.GET("/api/v1/reports/excluded-licensed", wrap(deps.ReportHandler.ExcludedLicensed))
	router.GET("/api/v1/reports/sign-ins", wrap(deps.ReportHandler.SignIns))

	// Refresh control
	router.POST("/api/v1/refresh",
		chain(deps.RefreshHandler.Trigger, authMid.Handle, requireRole("admin")))
	router.GET("/api/v1/refresh/status", wrap(deps.RefreshHandler.Status))

	// Settings
	router.GET("/api/v1/settings", wrap(deps.SettingsHandler.Get))
	router.PUT("/api/v1/settings",
		chain(deps.SettingsHandler.Update, authMid.Handle, requireRole("admin")))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
