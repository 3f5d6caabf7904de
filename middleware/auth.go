package middleware

import (
	"net/http"
	"os"
	"strings"

	"openbudget-api/config"
	"openbudget-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	MinistryID   string `json:"ministry_id"`
	Email        string `json:"email"`
	MinistryName string `json:"ministry_name"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// Check Bearer prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		// Parse token
		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Get claims
		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		// Check if the ministry account still exists
		var account models.MinistryAccount
		if err := config.DB.Where("id = ?", claims.MinistryID).First(&account).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Ministry account not found"})
			c.Abort()
			return
		}

		// Set account info in context
		c.Set("ministryID", claims.MinistryID)
		c.Set("email", claims.Email)
		c.Set("ministryName", account.MinistryName)

		c.Next()
	}
}

// RequireMinistry checks that the authenticated account owns the resource
func RequireMinistry(c *gin.Context, ministryID string) bool {
	current, exists := c.Get("ministryID")
	if !exists || current.(string) != ministryID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only manage your own ministry's resources"})
		return false
	}
	return true
}
