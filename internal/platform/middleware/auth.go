package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"veristaff/internal/jwttoken"
	id "veristaff/pkg/domain"
	dErrors "veristaff/pkg/domain-errors"
	"veristaff/pkg/platform/httputil"
	"veristaff/pkg/requestcontext"
)

// TokenValidator validates an access token string into claims.
type TokenValidator interface {
	Validate(tokenString string) (*jwttoken.Claims, error)
}

// RequireAuth validates the bearer token and injects the resulting actor
// into the context. Requests without a valid token never reach handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access, missing token",
					"request_id", requestcontext.RequestID(ctx))
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid token",
					"request_id", requestcontext.RequestID(ctx), "error", err)
				httputil.WriteError(w, err)
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, malformed claims",
					"request_id", requestcontext.RequestID(ctx), "error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

func actorFromClaims(claims *jwttoken.Claims) (requestcontext.Actor, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return requestcontext.Actor{}, err
	}
	actor := requestcontext.Actor{UserID: userID, Role: claims.Role}
	if claims.OrgID != "" {
		orgID, err := id.ParseOrgID(claims.OrgID)
		if err != nil {
			return requestcontext.Actor{}, err
		}
		actor.OrgID = orgID
	}
	return actor, nil
}
