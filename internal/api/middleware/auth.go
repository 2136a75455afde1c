package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/domain"
)

const identityKey contextKey = "identity"

// Authenticator checks an email/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// BasicAuth resolves HTTP Basic credentials to a user and stores the email on
// the request context. Requests without valid credentials never reach next.
func BasicAuth(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, domain.ErrUnauthenticated)
				return
			}

			u, err := auth.Authenticate(r.Context(), email, password)
			switch {
			case errors.Is(err, domain.ErrInvalidCredentials):
				logger.Info("rejected credentials",
					zap.String("email", email),
					zap.String("correlation_id", GetCorrelationID(r.Context())),
				)
				unauthorized(w, err)
				return
			case err != nil:
				logger.Error("authentication lookup failed",
					zap.String("correlation_id", GetCorrelationID(r.Context())),
					zap.Error(err),
				)
				writeError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error())
				return
			}

			ctx := WithIdentity(r.Context(), u.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity returns a copy of ctx carrying the authenticated user id.
func WithIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey, userID)
}

// GetIdentity returns the authenticated user id, or "" outside BasicAuth.
func GetIdentity(ctx context.Context) string {
	v, _ := ctx.Value(identityKey).(string)
	return v
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Basic realm="annotation", charset="UTF-8"`)
	writeError(w, http.StatusUnauthorized, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
