package api

import (
	"net/http"

	"vportfolio/portfolio-api/apperror"

	"github.com/gin-gonic/gin"
)

type sessionCreateBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

func (a *API) SessionCreate(c *gin.Context) {
	var data sessionCreateBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperror.Validation("invalid request body"))
		return
	}

	session, err := a.Sessions.Create(c.Request.Context(), data.Name, data.Description, data.Order)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}
