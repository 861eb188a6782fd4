package handler

import (
	"context"
	"net/http"
	"strings"

	"roomchat/internal/app/auth"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/resp"
)

type identityKey struct{}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth resolves the bearer token and stores the identity on the request context.
// The request logger is tagged with the caller's user id.
func RequireAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := svc.Resolve(r.Context(), bearerToken(r))
			if err != nil {
				resp.RespondError(w, r, err)
				return
			}

			logger := logx.Ctx(r.Context()).With().Int64("user_id", identity.User.ID).Logger()
			ctx := context.WithValue(logger.WithContext(r.Context()), identityKey{}, identity)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the identity stored by RequireAuth, or nil.
func IdentityFrom(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey{}).(*auth.Identity)
	return identity
}
