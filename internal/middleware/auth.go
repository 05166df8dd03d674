package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"employee-service/internal/authz"
	"employee-service/pkg/jwtutil"
	"employee-service/pkg/logger"
	"employee-service/prometheus"
)

const claimsKey = "claims"

// ClaimsFromContext returns the verified claims set by Auth, or nil when the
// request did not pass through it.
func ClaimsFromContext(c echo.Context) *jwtutil.Claims {
	claims, _ := c.Get(claimsKey).(*jwtutil.Claims)
	return claims
}

// Auth validates the JWT from the Authorization header and stores the claims
// in the request context. Verification is stateless; the database is not
// consulted.
func Auth(jwt *jwtutil.JWT) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Error("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Error("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(claimsKey, claims)

			return next(c)
		}
	}
}

// RequireAdmin gates an endpoint to administrators.
func RequireAdmin(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFromContext(c)
			if !authz.Allowed(claims, op, 0) {
				logger.FromContext(c).Warn("Admin access denied",
					zap.String("operation", string(op)),
					zap.String("role", roleOf(claims)))
				prometheus.RecordAuthError("forbidden")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Admin access required"})
			}
			return next(c)
		}
	}
}

// RequireSelfOrAdmin gates an endpoint taking an :id param to administrators
// and to employees acting on their own record.
func RequireSelfOrAdmin(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := strconv.ParseUint(c.Param("id"), 10, 32)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid employee ID"})
			}

			claims := ClaimsFromContext(c)
			if !authz.Allowed(claims, op, uint(id)) {
				logger.FromContext(c).Warn("Access to employee record denied",
					zap.String("operation", string(op)),
					zap.Uint64("employee_id", id),
					zap.String("role", roleOf(claims)))
				prometheus.RecordAuthError("forbidden")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden"})
			}
			return next(c)
		}
	}
}

func roleOf(claims *jwtutil.Claims) string {
	if claims == nil {
		return ""
	}
	return claims.Role
}
