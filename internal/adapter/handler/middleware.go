package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/platform/metrics"
)

type TokenParser interface {
	ParseToken(token string) (domain.Principal, error)
}

type adminCtxKey struct{}

// RequireAdmin rejects requests without a valid bearer token, refuses
// non-admin roles and puts the caller on the request context.
func RequireAdmin(tokens TokenParser, log *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, r, log, domain.ErrUnauthorized)
				return
			}

			principal, err := tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, r, log, domain.ErrUnauthorized)
				return
			}
			if principal.Role != domain.RoleAdmin {
				log.WithField("username", principal.Username).Warn("non-admin token on admin route")
				writeError(w, r, log, domain.ErrForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), adminCtxKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminFromContext(ctx context.Context) string {
	principal, _ := ctx.Value(adminCtxKey{}).(domain.Principal)
	return principal.Username
}

// AccessLog writes one line per request.
func AccessLog(log *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			next.ServeHTTP(rw, r)

			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rw.Status,
				"remote":      r.RemoteAddr,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if rw.Status >= http.StatusInternalServerError {
				entry.Warn("request served")
				return
			}
			entry.Info("request served")
		})
	}
}

// routeTemplate is the matched mux template, e.g. /api/events/{id}.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
