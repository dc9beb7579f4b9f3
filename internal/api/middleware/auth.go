package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kartsetup/setupsheet/internal/api/response"
	"github.com/kartsetup/setupsheet/internal/auth"
)

const identityKey contextKey = "identity"

// TokenAuthenticator resolves a bearer token to an Identity.
type TokenAuthenticator interface {
	Authenticate(raw string) (*auth.Identity, error)
}

// Auth extracts the manager token from the Authorization header and stores
// the resolved Identity in the context. Missing or invalid tokens get 401.
func Auth(authenticator TokenAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			raw, ok := bearerToken(r)
			if !ok {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Manager token is required", requestID)
				return
			}

			identity, err := authenticator.Authenticate(raw)
			if err != nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
