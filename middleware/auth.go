package middleware

import (
	"fmt"
	"net/http"

	"vportfolio/portfolio-api/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthCookie is the cookie carrying the signed session token issued at
// login.
const AuthCookie = "auth_token"

func abortAuth(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     kind,
		"message":   message,
		"requestID": c.GetString("requestID"),
	})
}

// NewAuthMiddleware parses the auth cookie and re-reads the user row by
// id on every call. The role always comes from the database, never from
// anything the client sends.
func NewAuthMiddleware(d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(AuthCookie)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Missing auth token")
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}

			return []byte(viper.GetString("auth.jwt_secret")), nil
		})
		if err != nil || !token.Valid {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired auth token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired auth token")
			return
		}

		// Subject is the user id; exp was already validated by the parser
		userID, ok := claims["user_id"].(float64)
		if !ok || userID <= 0 {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired auth token")
			return
		}

		var user model.User
		err = d.Where("id = ?", uint(userID)).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				// Token outlived the account
				abortAuth(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired auth token")
				return
			}

			abortAuth(c, http.StatusInternalServerError, "internal_error", "Internal server error")
			zap.L().Error("Failed to load user for auth token", zap.Error(err))
			return
		}

		c.Set("actor", &user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// RequireAdmin gates a route to admin actors. It must run after the auth
// middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.MustGet("actor").(*model.User)

		if !actor.IsAdmin() {
			abortAuth(c, http.StatusForbidden, "forbidden", "Admin privileges required")
			return
		}

		c.Next()
	}
}

// Actor returns the authenticated user stashed by the auth middleware.
func Actor(c *gin.Context) *model.User {
	return c.MustGet("actor").(*model.User)
}
