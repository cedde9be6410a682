package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"origination-engine/internal/config"
	"origination-engine/internal/domain/application"
	"origination-engine/internal/domain/profile"
)

type contextKey string

const actorContextKey contextKey = "actor"

// AuthMiddleware validates the bearer token and stores the authenticated
// actor (profile id + role claims) in the request context. With auth
// disabled, the actor is taken from X-Actor-ID and X-Actor-Role headers.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				actor, ok := actorFromHeaders(r)
				if !ok {
					logger.Warn("AuthMiddleware: Missing or invalid actor headers")
					http.Error(w, `{"error":{"message":"Unauthorized"}}`, http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorFromJWT(r, cfg.JWTSecret, logger)
			if !ok {
				http.Error(w, `{"error":{"message":"Unauthorized"}}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

// ActorFromContext returns the actor the auth middleware stored.
func ActorFromContext(ctx context.Context) (application.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(application.Actor)
	return actor, ok
}

func withActor(ctx context.Context, actor application.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func actorFromHeaders(r *http.Request) (application.Actor, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	if err != nil {
		return application.Actor{}, false
	}
	role := profile.Role(r.Header.Get("X-Actor-Role"))
	if !role.Valid() {
		return application.Actor{}, false
	}
	return application.Actor{ID: id, Role: role}, true
}

func actorFromJWT(r *http.Request, secret string, logger *slog.Logger) (application.Actor, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn("AuthMiddleware: Missing Authorization header")
		return application.Actor{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		logger.Warn("AuthMiddleware: Invalid Authorization header format")
		return application.Actor{}, false
	}
	tokenString := parts[1]

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			logger.Warn("AuthMiddleware: Unexpected signing method")
			return nil, http.ErrAbortHandler
		}
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		logger.Warn("AuthMiddleware: Invalid token", "error", err)
		return application.Actor{}, false
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		logger.Warn("AuthMiddleware: Token missing subject claim")
		return application.Actor{}, false
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		logger.Warn("AuthMiddleware: Token subject is not a profile id", "sub", sub)
		return application.Actor{}, false
	}

	roleClaim, _ := claims["role"].(string)
	role := profile.Role(roleClaim)
	if !role.Valid() {
		logger.Warn("AuthMiddleware: Token missing or invalid role claim", "role", roleClaim)
		return application.Actor{}, false
	}

	return application.Actor{ID: id, Role: role}, true
}
