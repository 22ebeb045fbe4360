package api

import (
	"net/http"

	"vportfolio/portfolio-api/apperror"
	"vportfolio/portfolio-api/middleware"

	"github.com/gin-gonic/gin"
)

type passwordBody struct {
	NewPassword     string `json:"newPassword"`
	CurrentPassword string `json:"currentPassword"`
}

func (a *API) UserPassword(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var data passwordBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperror.Validation("invalid request body"))
		return
	}

	err := a.Users.ChangePassword(c.Request.Context(), middleware.Actor(c), id, data.NewPassword, data.CurrentPassword)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
