// Package auth supplies the verified owner identity for every authorized
// call. Credential issuance (login, OTP) lives outside this service; the
// middleware here only validates bearer tokens and places the owner id on the
// request context, which the domain layer trusts implicitly.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// DevOwnerID is the fixed identity assigned by DevAuthMiddleware.
var DevOwnerID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

type Claims struct {
	jwt.RegisteredClaims
}

type JWTConfig struct {
	// Secret is the HS256 shared signing key.
	Secret []byte
	// Issuer, when set, is enforced against the token's iss claim.
	Issuer string
}

// JWTMiddleware validates the Authorization bearer token and stores the
// owner id (the token subject) on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"HS256"}),
			}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}

			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.Secret, nil
			}, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ownerID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			setOwner(c, ownerID)
			return next(c)
		}
	}
}

// DevAuthMiddleware assigns a fixed owner identity to every request. It is
// only wired when ENV=development. The X-Owner-ID header may override the
// identity so that multi-owner flows can be exercised locally.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID := DevOwnerID
			if h := c.Request().Header.Get("X-Owner-ID"); h != "" {
				if id, err := uuid.Parse(h); err == nil {
					ownerID = id
				}
			}
			setOwner(c, ownerID)
			return next(c)
		}
	}
}

func setOwner(c echo.Context, ownerID uuid.UUID) {
	// Echo context value feeds the rate limiter key
	c.Set("owner_id", ownerID.String())

	ctx := context.WithValue(c.Request().Context(), ownerIDKey, ownerID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// OwnerIDFromContext returns the authenticated owner id, or false when the
// request carried no identity.
func OwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerIDKey).(uuid.UUID)
	return id, ok
}

// WithOwnerID returns a context carrying the given owner id. Used by tests
// and the dev tooling.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}
