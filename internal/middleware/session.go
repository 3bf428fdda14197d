package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/myadmit/admit-backend/internal/response"
	"github.com/myadmit/admit-backend/internal/service"
)

// CheckTokenRevoked rejects tokens whose JTI was denylisted by logout.
// Redis errors fail open so an outage does not log everyone out.
func CheckTokenRevoked(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if claims.ID == "" {
			c.Next()
			return
		}

		revoked, err := authService.IsRevoked(c.Request.Context(), claims.ID)
		if err == nil && revoked {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRevoked)
			return
		}

		c.Next()
	}
}
