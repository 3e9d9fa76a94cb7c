package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const principalKey contextKey = "principal"

// Roles issued by the identity provider.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Principal is the authenticated identity attached to every request. Services
// receive it as an explicit parameter; there is no ambient session lookup.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// IsDoctor reports whether the principal authenticated as a doctor.
func (p Principal) IsDoctor() bool { return p.Role == RoleDoctor }

// Claims is the session token payload issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// JWTMiddleware validates HMAC-signed bearer tokens from the session provider
// and stores the resulting Principal on the request context.
func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
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
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			role := claims.Role
			if role == "" {
				role = RolePatient
			}

			ctx := WithPrincipal(c.Request().Context(), Principal{
				UserID: claims.Subject,
				Email:  claims.Email,
				Name:   claims.Name,
				Role:   role,
			})
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevAuthMiddleware is a permissive middleware for development that gives
// unauthenticated requests a default patient identity. Requests that do carry
// a bearer token still go through normal validation upstream.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				ctx := WithPrincipal(c.Request().Context(), Principal{
					UserID: "00000000-0000-0000-0000-000000000001",
					Email:  "dev@wellbee.local",
					Name:   "Dev User",
					Role:   RolePatient,
				})
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// RequireRole returns middleware that rejects requests whose principal does
// not hold one of the given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				"required role: "+strings.Join(roles, " or "))
		}
	}
}
