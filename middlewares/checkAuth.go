package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/WWJD/apperrors"
	"github.com/WWJD/models"
)

const (
	currentUserKey = "currentUser"
	SessionTTL     = 24 * time.Hour
)

type UserLoader interface {
	GetUser(ctx context.Context, userID int) (models.UserProfile, error)
}

// NewSessionToken signs an HS256 session token for userID.
func NewSessionToken(secret string, userID int, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":  float64(userID),
		"exp": float64(time.Now().Add(ttl).Unix()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// CheckAuth validates the bearer session token and stores the signed-in
// user under "currentUser".
func CheckAuth(secret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		authToken := strings.Split(authHeader, " ")
		if len(authToken) != 2 || authToken[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		token, err := jwt.Parse(authToken[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		id, ok := claims["id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), int(id))
		if errors.Is(err, apperrors.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user profile"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by CheckAuth.
func CurrentUser(c *gin.Context) (models.UserProfile, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return models.UserProfile{}, false
	}
	user, ok := v.(models.UserProfile)
	return user, ok
}

// SetCurrentUser stores user the way CheckAuth does.
func SetCurrentUser(c *gin.Context, user models.UserProfile) {
	c.Set(currentUserKey, user)
}
