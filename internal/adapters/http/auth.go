package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
)

const tokenTTL = 30 * 24 * time.Hour

type shadowClaims struct {
	Shadow string `json:"shadow"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the given identity. The token binds
// the durable user id and its public Shadow handle, nothing else.
func IssueToken(secret string, u *domain.User) (string, error) {
	claims := shadowClaims{
		Shadow: u.Shadow,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(u.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// AuthRequired verifies the Authorization bearer token and exposes the
// caller's identity to handlers. Everything past this middleware can trust
// user_id and shadow.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		var claims shadowClaims
		token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("user_id", claims.Subject)
		c.Set("shadow", claims.Shadow)
		c.Next()
	}
}
