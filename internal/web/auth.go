package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	authCookie   = "cooknet_token"
	cookieMaxAge = 7 * 24 * time.Hour
	ctxUserKey   = "username"
)

// login upserts the user under their chosen handle and issues a JWT cookie.
func (s *Server) login(c *gin.Context) {
	username := truncate(strings.TrimSpace(c.PostForm("username")), 32)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	if _, err := s.store.UpsertUser(c.Request.Context(), username, username); err != nil {
		s.storeError(c, err)
		return
	}

	claims := jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(cookieMaxAge)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.SetCookie(authCookie, token, int(cookieMaxAge.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"username": username})
}

// identity extracts the username from the auth cookie when present. Invalid
// or expired tokens are treated as anonymous, not as errors.
func (s *Server) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(authCookie)
		if err != nil || raw == "" {
			c.Next()
			return
		}
		token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.Next()
			return
		}
		if claims, ok := token.Claims.(*jwt.RegisteredClaims); ok && claims.Subject != "" {
			c.Set(ctxUserKey, claims.Subject)
		}
		c.Next()
	}
}

// requireAuth guards routes that need an attributable author.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authedUser(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

func authedUser(c *gin.Context) string {
	if v, ok := c.Get(ctxUserKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
