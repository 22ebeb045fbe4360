package api

import (
	"net/http"

	"vportfolio/portfolio-api/middleware"

	"github.com/gin-gonic/gin"
)

func (a *API) UserDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := a.Users.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
