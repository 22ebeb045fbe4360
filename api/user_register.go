package api

import (
	"net/http"

	"vportfolio/portfolio-api/apperror"

	"github.com/gin-gonic/gin"
)

type registerBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (a *API) UserRegister(c *gin.Context) {
	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperror.Validation("invalid request body"))
		return
	}

	user, err := a.Users.Create(c.Request.Context(), data.Username, data.Password, data.Role)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}
