package api

import (
	"net/http"
	"time"

	"vportfolio/portfolio-api/apperror"
	"vportfolio/portfolio-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) UserLogin(c *gin.Context) {
	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperror.Validation("invalid request body"))
		return
	}

	user, err := a.Users.Login(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		fail(c, err)
		return
	}

	ttl := time.Duration(viper.GetInt("auth.token_ttl_hours")) * time.Hour

	token, err := makeToken(jwt.MapClaims{
		"user_id": user.ID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	})
	if err != nil {
		fail(c, apperror.Internal(err))
		return
	}

	c.SetCookie(middleware.AuthCookie, token, int(ttl.Seconds()), "/", "", viper.GetBool("host.ssl_enabled"), true)
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

func (a *API) UserLogout(c *gin.Context) {
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", viper.GetBool("host.ssl_enabled"), true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func makeToken(claims jwt.MapClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(viper.GetString("auth.jwt_secret")))
}
