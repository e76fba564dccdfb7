package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"go-market/pkg/errors"
)

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "user_id"

// Authenticate requires an HS256 bearer token carrying a user_id claim
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.Error(errors.NewUnauthorized("missing bearer token"))
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			c.Error(errors.NewUnauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		userID, _ := claims[UserIDKey].(string)
		if userID == "" {
			c.Error(errors.NewUnauthorized("token has no user_id claim"))
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// IssueToken signs a token for userID. Used by tests and local tooling.
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		UserIDKey: userID,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	})
	return token.SignedString(secret)
}
