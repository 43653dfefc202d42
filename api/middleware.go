package api

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
)

const correlationHeader = "X-Correlation-ID"

// correlationID accepts a caller-provided correlation ID or mints one, and
// stores it on the request context for logs and published events.
func (s *Server) correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(correlationHeader, id)
		ctx := attr.WithCorrelationID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limitAwards applies a global token bucket to the award endpoint; award
// traffic is machine-generated and a runaway producer must not be able to
// flood the counters.
func (s *Server) limitAwards(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.awardLimiter.Allow() {
			respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin validates a bearer token signed with the configured secret
// and carrying role "admin".
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			return []byte(s.cfg.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}
		if role, _ := claims["role"].(string); role != "admin" {
			respondJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireSchedulerSecret guards the external rollover trigger. Constant
// shared secret in a header, for cron-style callers that cannot hold a
// JWT.
func (s *Server) requireSchedulerSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Scheduler.SharedSecret == "" ||
			r.Header.Get("X-Scheduler-Secret") != s.cfg.Scheduler.SharedSecret {
			respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid scheduler secret"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
