package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/identity"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// TokenVerifier checks a bearer token.
type TokenVerifier interface {
	Verify(token string) (identity.Identity, error)
}

// ProfileResolver maps a verified identity onto its stored profile.
type ProfileResolver interface {
	Resolve(ctx context.Context, id identity.Identity) (*models.UserProfile, error)
}

// AuthMiddleware verifies the bearer token, resolves the caller's profile
// and attaches a request-scoped session that is closed when the request
// ends. Requests that cannot be resolved never reach the handler.
func AuthMiddleware(verifier TokenVerifier, resolver ProfileResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header || token == "" {
				http.Error(w, "Missing or malformed token", http.StatusUnauthorized)
				return
			}

			id, err := verifier.Verify(token)
			if err != nil {
				logrus.WithError(err).Warn("Rejected identity token")
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			profile, err := resolver.Resolve(r.Context(), id)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"email": id.Email,
					"error": err,
				}).Error("Failed to resolve user profile")
				if errors.Is(err, apperrors.ErrStoreUnavailable) {
					http.Error(w, "Storage unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "Failed to resolve user", http.StatusInternalServerError)
				return
			}

			sess := session.New(*profile)
			defer sess.Close()

			ctx := WithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext returns the request's session, or nil.
func GetSessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// WithSession attaches sess to ctx.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// RequireAdmin sends non-admin users back to the landing page before any
// admin handler runs.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSessionFromContext(r.Context())
		if !sess.Active() {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !sess.IsAdmin() {
			logrus.WithField("email", sess.Email()).Warn("Non-admin redirected away from admin route")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
