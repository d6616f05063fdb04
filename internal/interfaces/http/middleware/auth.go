package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hawaiibiz/intel/internal/infrastructure/auth"
	"github.com/hawaiibiz/intel/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	ClaimsKey   = "jwt_claims"
	SubjectKey  = "jwt_subject"
	bearerToken = "Bearer "
)

// RequireRole authenticates the bearer token and checks it grants role.
// Missing or invalid tokens get 401, valid tokens without the role 403.
func RequireRole(jwtService *auth.JWTService, role string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, bearerToken)
		if !ok || strings.TrimSpace(token) == "" {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logger.Warn("Rejected bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			if errors.Is(err, auth.ErrExpiredToken) {
				abortAuth(c, http.StatusUnauthorized, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(SubjectKey, claims.Subject)

		if !claims.HasRole(role) {
			logger.Warn("Token lacks required role",
				zap.String("subject", claims.Subject),
				zap.String("role", role),
				zap.String("path", c.Request.URL.Path),
			)
			abortAuth(c, http.StatusForbidden, dto.ErrCodeForbidden, "The "+role+" role is required")
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetClaims returns the claims stored by RequireRole, or nil
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetSubject returns the authenticated subject, or ""
func GetSubject(c *gin.Context) string {
	return c.GetString(SubjectKey)
}
