package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	pkgauth "github.com/freshsouq/freshsouq-backend/pkg/auth"
	"github.com/freshsouq/freshsouq-backend/pkg/config"
	"github.com/freshsouq/freshsouq-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// Session resolves the cart session for a request. A valid bearer token
// binds the session to the user, an explicit X-Session-Id header keeps a
// guest's cart across requests, and anything else gets a fresh guest
// session. The resolved id is always echoed back so the client can keep
// it.
func Session(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				if claims, err := pkgauth.ParseAccessToken(cfg, token); err == nil {
					userID := claims.UserID.String()
					sessionID := "user:" + userID

					ctx = WithUserID(ctx, userID)
					ctx = WithSessionID(ctx, sessionID)
					if logg != nil {
						ctx = logg.WithUserID(ctx, userID)
						ctx = logg.WithSessionID(ctx, sessionID)
					}
					w.Header().Set(sessionIDHeader, sessionID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				} else if logg != nil {
					lctx := logg.WithField(ctx, "error", err.Error())
					logg.Warn(lctx, "session.token_rejected")
				}
			}

			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" || len(sessionID) > 128 {
				sessionID = "guest:" + uuid.NewString()
			}

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			w.Header().Set(sessionIDHeader, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return ""
}
