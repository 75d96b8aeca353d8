package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"assessment-service/internal/domain"
	"assessment-service/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware логирует входящие HTTP-запросы и их статус/длительность.
func LoggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// RecoveryMiddleware перехватывает panic, логирует их и возвращает INTERNAL ошибку.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", "panic", rec)
					WriteError(w, &internalError{})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// internalError используется для возврата INTERNAL при панике
type internalError struct{}

func (d *internalError) Error() string { return "internal error" }

type actorKey struct{}

// ActorMiddleware извлекает актора из заголовков, проставленных
// провайдером идентичности: X-Actor-Id, X-Actor-Roles, X-Actor-Department.
// Аутентификация — не забота сервиса, роли приходят уже разрешёнными.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := r.Header.Get("X-Actor-Id")

		if actorID == "" && r.URL.Path != "/health" {
			WriteError(w, domain.NewDomainError(domain.ErrorCodeAuthorization, domain.ErrAccessDenied))
			return
		}

		actor := domain.Actor{
			ID:           actorID,
			DepartmentID: r.Header.Get("X-Actor-Department"),
		}

		for _, raw := range strings.Split(r.Header.Get("X-Actor-Roles"), ",") {
			role := domain.Role(strings.ToUpper(strings.TrimSpace(raw)))

			switch role {
			case domain.RoleAdmin, domain.RoleHR, domain.RoleManager, domain.RoleEmployee:
				actor.Roles = append(actor.Roles, role)
			}
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext возвращает актора запроса, положенного ActorMiddleware.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(domain.Actor)
	return actor
}
