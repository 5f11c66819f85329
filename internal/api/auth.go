package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const adminSubject = "admin"

// adminClaims represents JWT claims for the admin session.
type adminClaims struct {
	jwt.RegisteredClaims
}

func generateToken(secret string, expiresAt time.Time) (string, error) {
	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(tokenStr, secret string) error {
	token, err := jwt.ParseWithClaims(tokenStr, &adminClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid || claims.Subject != adminSubject {
		return errors.New("invalid token claims")
	}
	return nil
}

// AuthMiddleware enforces JWT auth for the admin routes.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "MISSING_TOKEN",
				"error": "missing Authorization header",
			})
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "INVALID_AUTH_HEADER",
				"error": "invalid Authorization header",
			})
			return
		}

		if err := parseToken(parts[1], secret); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":  "INVALID_TOKEN",
				"error": "invalid or expired token",
			})
			return
		}

		c.Next()
	}
}

// adminLogin exchanges the admin password for a bearer token.
func (s *Server) adminLogin(c *gin.Context) {
	if s.adminHash == nil {
		respondError(c, http.StatusServiceUnavailable, "ADMIN_DISABLED", "admin password not configured")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid request payload")
		return
	}
	if req.Password == "" {
		respondError(c, http.StatusBadRequest, "MISSING_CREDENTIALS", "password is required")
		return
	}

	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "wrong password")
		return
	}

	token, err := generateToken(s.Cfg.JWTSecret, time.Now().Add(24*time.Hour))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to sign token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
