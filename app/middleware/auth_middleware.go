// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amirphl/leadboard/app/dto"
	"github.com/amirphl/leadboard/app/services"
	businessflow "github.com/amirphl/leadboard/business_flow"
	"github.com/amirphl/leadboard/models"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	actorLocalsKey       = "actor"
	accessTokenLocalsKey = "access_token"
	claimsLocalsKey      = "token_claims"

	roleLookupTimeout = 2 * time.Second
)

// RoleResolver decides the effective application role of a token subject
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID uuid.UUID, claimRole string) string
}

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
	roles        RoleResolver
}

// NewAuthMiddleware creates a new authentication middleware. roles may be nil, in which case the claim is trusted.
func NewAuthMiddleware(tokenService services.TokenService, roles RoleResolver) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		roles:        roles,
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: message, Code: code})
}

// Authenticate is the middleware function that validates JWT tokens
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return m.authenticate(false)
}

// AuthenticateStream also accepts the token as ?access_token= since EventSource cannot set headers
func (m *AuthMiddleware) AuthenticateStream() fiber.Handler {
	return m.authenticate(true)
}

func (m *AuthMiddleware) authenticate(allowQuery bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var token string
		switch {
		case authHeader == "" && allowQuery && c.Query("access_token") != "":
			token = c.Query("access_token")
		case authHeader == "":
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		case !strings.HasPrefix(authHeader, "Bearer "):
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		default:
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if token == "" {
				return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), roleLookupTimeout)
		defer cancel()

		// Validate the token (this already checks for revocation)
		claims, err := m.tokenService.ValidateToken(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenRevoked):
				return unauthorized(c, "Access token has been revoked", "TOKEN_REVOKED")
			default:
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			}
		}
		if claims.TokenType != services.TokenTypeAccess {
			return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
		}

		role := claims.Role
		if m.roles != nil {
			role = m.roles.ResolveRole(ctx, claims.Subject, claims.Role)
		} else if role == "" {
			role = models.RoleUser
		}

		SetActor(c, businessflow.Actor{
			UserID: claims.Subject,
			Role:   role,
			AAL:    claims.AAL,
		})
		c.Locals(accessTokenLocalsKey, token)
		c.Locals(claimsLocalsKey, claims)

		return c.Next()
	}
}

// RequireRole rejects callers whose resolved role is not one of roles
func RequireRole(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := GetActorFromContext(c)
		if !ok {
			return unauthorized(c, "Authentication required", "AUTHENTICATION_REQUIRED")
		}
		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "Insufficient permissions",
			Code:  businessflow.CodeForbidden,
		})
	}
}

// RequireAAL2 rejects sessions that have not completed a second factor
func RequireAAL2() fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := GetActorFromContext(c)
		if !ok {
			return unauthorized(c, "Authentication required", "AUTHENTICATION_REQUIRED")
		}
		if !actor.HasAAL2() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "Two-factor verification required",
				Code:  businessflow.CodeMFARequired,
			})
		}
		return c.Next()
	}
}

// SetActor stores the authenticated caller on the request
func SetActor(c fiber.Ctx, actor businessflow.Actor) {
	c.Locals(actorLocalsKey, actor)
}

// GetActorFromContext extracts the authenticated caller from the request context
func GetActorFromContext(c fiber.Ctx) (businessflow.Actor, bool) {
	actor, ok := c.Locals(actorLocalsKey).(businessflow.Actor)
	return actor, ok
}

// GetAccessTokenFromContext returns the raw bearer token of the request
func GetAccessTokenFromContext(c fiber.Ctx) (string, bool) {
	token, ok := c.Locals(accessTokenLocalsKey).(string)
	return token, ok && token != ""
}

// GetTokenClaimsFromContext extracts token claims from the request context
func GetTokenClaimsFromContext(c fiber.Ctx) (*services.TokenClaims, bool) {
	claims, ok := c.Locals(claimsLocalsKey).(*services.TokenClaims)
	return claims, ok
}
