package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/safetravels/internal/domain/auth"
	apperrors "github.com/yanqian/safetravels/pkg/errors"
)

const claimsKey = "auth_claims"

// authMiddleware admits requests carrying a valid access token and stores
// its claims for the rate limiter and the access log.
func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			fail(c, newAPIError(http.StatusUnauthorized, "unauthorized", "a bearer access token is required", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		switch {
		case apperrors.IsCode(err, apperrors.CodeInvalidToken):
			fail(c, newAPIError(http.StatusForbidden, apperrors.CodeInvalidToken, "", err))
			return
		case err != nil:
			fail(c, newAPIError(http.StatusInternalServerError, "auth_failed", "", err))
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Value(claimsKey).(auth.Claims)
	return claims, ok
}
