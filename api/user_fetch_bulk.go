package api

import (
	"net/http"

	"vportfolio/portfolio-api/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) UserFetchBulk(c *gin.Context) {
	users, err := a.Users.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}
