package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/infrastructure/auth"
	"github.com/sgi/backend/internal/infrastructure/logger"
	"github.com/sgi/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys set by Auth
const (
	ActorKey      = "sgi_actor"
	ClaimsKey     = "sgi_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator turns a bearer token into the actor it was issued to
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.Actor, *auth.Claims, error)
}

// Auth requires a valid bearer token and stores the authenticated actor,
// freshly loaded from the store, on the gin context.
func Auth(authn Authenticator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		actor, claims, err := authn.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
			case errors.Is(err, auth.ErrTokenBlacklisted):
				abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Token has been revoked")
			case isTokenError(err):
				log.Debug("Rejected bearer token", zap.Error(err), zap.String("path", c.Request.URL.Path))
				abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			default:
				logger.Enrich(c.Request.Context(), log).Error("Authentication lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred", c.GetString(RequestIDKey)))
			}
			return
		}

		c.Set(ActorKey, actor)
		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), actor.ID.String()))
		c.Next()
	}
}

func isTokenError(err error) bool {
	for _, target := range []error{
		auth.ErrInvalidToken,
		auth.ErrInvalidClaims,
		auth.ErrTokenNotYetValid,
		auth.ErrMissingActorID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, c.GetString(RequestIDKey)))
}

// CurrentActor returns the actor stored by Auth
func CurrentActor(c *gin.Context) (*identity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*identity.Actor)
	return actor, ok && actor != nil
}

// CurrentClaims returns the token claims stored by Auth
func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}
