package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"donorhub/internal/api/dto"
	"donorhub/internal/auth"
	"donorhub/internal/models"
)

const claimsContextKey = "claims"

// AuthRequired validates the Bearer token and stores its claims on the context
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   models.ErrCodeUnauthorized,
				Message: "Missing or malformed Authorization header",
			})
			return
		}

		claims, err := auth.ValidateJWT(strings.TrimPrefix(header, "Bearer "), jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   models.ErrCodeUnauthorized,
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// AdminOnly gates a route group on the admin role. Must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Get(claimsContextKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   models.ErrCodeUnauthorized,
				Message: "Authentication required",
			})
			return
		}

		if claims.(*auth.Claims).Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   models.ErrCodeForbidden,
				Message: "Administrator access required",
			})
			return
		}

		c.Next()
	}
}
