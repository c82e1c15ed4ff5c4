package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/storefront/internal/domain/entity"
)

// contextKey is used for storing the identity in context
type contextKey string

const (
	identityContextKey contextKey = "authenticated_identity"
)

// Claims is the token payload issued and accepted by this service.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret    string
	Logger    *zap.Logger
	SkipPaths []string // Paths to skip JWT validation
	// Optional lets requests without an Authorization header through anonymously.
	// A header that is present must still be valid.
	Optional bool
	// RequiredRole rejects tokens whose role claim differs.
	RequiredRole string
}

// JWTMiddleware validates HS256 bearer tokens and stores the identity on the request.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Skip JWT validation for certain paths
			path := c.Request().URL.Path
			for _, skipPath := range config.SkipPaths {
				if strings.HasPrefix(path, skipPath) {
					return next(c)
				}
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if config.Optional {
					return next(c)
				}
				config.Logger.Warn("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authorization header required",
					"code":  "MISSING_AUTH_HEADER",
				})
			}

			// Check Bearer prefix
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid authorization header format. Expected: Bearer <token>",
					"code":  "INVALID_AUTH_FORMAT",
				})
			}

			claims, err := ParseToken(config.Secret, tokenString)
			if err != nil {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid or expired token",
					"code":  "INVALID_TOKEN",
				})
			}

			if config.RequiredRole != "" && claims.Role != config.RequiredRole {
				config.Logger.Warn("Token role not allowed",
					zap.String("role", claims.Role),
					zap.String("required_role", config.RequiredRole),
					zap.String("path", path))
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "Insufficient permissions",
					"code":  "FORBIDDEN_ROLE",
				})
			}

			identity := &entity.Identity{
				Subject: claims.Subject,
				Email:   claims.Email,
				Name:    claims.Name,
				Role:    claims.Role,
			}

			// Store identity in request context
			ctx := context.WithValue(c.Request().Context(), identityContextKey, identity)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", identity.Subject)

			config.Logger.Debug("Request authenticated",
				zap.String("subject", identity.Subject),
				zap.String("role", identity.Role),
				zap.String("path", path))

			return next(c)
		}
	}
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// TokenIssuer signs HS256 tokens for identities.
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for identity valid for ttl.
func (t *TokenIssuer) Issue(identity entity.Identity, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// GetIdentity returns the authenticated identity, or nil for anonymous requests.
func GetIdentity(c echo.Context) *entity.Identity {
	identity, _ := c.Request().Context().Value(identityContextKey).(*entity.Identity)
	return identity
}

// RequireAuth is a helper function to get the identity or return an error response
func RequireAuth(c echo.Context) (*entity.Identity, error) {
	identity := GetIdentity(c)
	if identity == nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Authentication required",
			"code":  "AUTH_REQUIRED",
		})
	}
	return identity, nil
}
