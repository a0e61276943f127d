package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Rayyy-dev/User-Management/config"
	"github.com/Rayyy-dev/User-Management/internal/api"
	"github.com/Rayyy-dev/User-Management/internal/types"
)

// Define typed context keys
type contextKey string

const SessionKey contextKey = "session"

// GetSessionFromContext returns the session info placed by RequireSession.
func GetSessionFromContext(ctx context.Context) (*types.SessionInfo, bool) {
	info, ok := ctx.Value(SessionKey).(*types.SessionInfo)
	return info, ok
}

// RequireSession guards routes behind authentication. It accepts the
// session cookie first and falls back to a Bearer access token, so both
// browser clients and API clients can reach protected routes.
func RequireSession(service AuthService, logger *slog.Logger, jwtCfg config.JWTConfig, cookieName string) func(next http.Handler) http.Handler {
	secretKey := []byte(jwtCfg.SecretKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "RequireSession"))

			if cookie, err := r.Cookie(cookieName); err == nil {
				token, err := uuid.Parse(cookie.Value)
				if err != nil {
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid session")
					return
				}

				info, err := service.GetSession(ctx, token)
				if err != nil {
					l.WarnContext(ctx, "Session rejected", slog.Any("error", err))
					api.ErrorResponse(w, r, http.StatusUnauthorized, "Session expired or invalid")
					return
				}

				ctx = context.WithValue(ctx, SessionKey, info)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims := &types.Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secretKey, nil
			})
			if err != nil || !token.Valid {
				l.WarnContext(ctx, "Access token rejected", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			if jwtCfg.Audience != "" && !api.VerifyAudience(claims.Audience, jwtCfg.Audience) {
				l.WarnContext(ctx, "Token audience mismatch", slog.Any("actual", claims.Audience))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token audience")
				return
			}

			ctx = context.WithValue(ctx, SessionKey, &types.SessionInfo{
				UserID:    claims.UserID,
				Username:  claims.Username,
				Email:     claims.Email,
				ExpiresAt: claims.ExpiresAt.Time,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
