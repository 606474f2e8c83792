package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/identity"
	"github.com/sgi/backend/internal/domain/shared"
	"github.com/sgi/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any failed login, whatever the cause
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// ErrAccountInactive is returned when a deactivated actor tries to log in
var ErrAccountInactive = shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")

// AuthService handles authentication
type AuthService struct {
	actors     identity.ActorRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	clock      shared.Clock
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	actors identity.ActorRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	clock shared.Clock,
	logger *zap.Logger,
) *AuthService {
	if clock == nil {
		clock = shared.SystemClock
	}
	return &AuthService{
		actors:     actors,
		jwtService: jwtService,
		blacklist:  blacklist,
		clock:      clock,
		logger:     logger,
	}
}

// Login authenticates an actor by username and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	actor, err := s.actors.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("login for unknown username", zap.String("username", input.Username), zap.String("ip", input.IP))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !actor.CanLogin() {
		s.logger.Warn("login attempt for inactive account", zap.String("username", actor.Username))
		return nil, ErrAccountInactive
	}
	if !actor.VerifyPassword(input.Password) {
		s.logger.Warn("invalid password attempt", zap.String("username", actor.Username), zap.String("ip", input.IP))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(actor)
	if err != nil {
		return nil, err
	}
	s.logger.Info("actor logged in",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", string(actor.Role)),
	)
	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		Actor:       ToActorResponse(actor),
	}, nil
}

// Logout revokes the token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.GetRemainingTTL(s.clock.Now())
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		return err
	}
	s.logger.Info("actor logged out", zap.String("actor_id", claims.ActorID))
	return nil
}

// Authenticate validates a bearer token and loads its actor. The actor is
// read from the store so role and group changes apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*identity.Actor, *auth.Claims, error) {
	claims, err := s.jwtService.Validate(token)
	if err != nil {
		return nil, nil, err
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, auth.ErrTokenBlacklisted
	}

	actorID, err := uuid.Parse(claims.ActorID)
	if err != nil {
		return nil, nil, auth.ErrInvalidClaims
	}
	actor, err := s.actors.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, auth.ErrInvalidToken
		}
		return nil, nil, err
	}
	if !actor.CanLogin() {
		return nil, nil, auth.ErrInvalidToken
	}
	return actor, claims, nil
}

// TokenLifetime returns how long issued tokens stay valid
func (s *AuthService) TokenLifetime() time.Duration {
	return s.jwtService.Expiration()
}
