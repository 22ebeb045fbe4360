package api

import (
	"net/http"

	"vportfolio/portfolio-api/apperror"

	"github.com/gin-gonic/gin"
)

type sessionUpdateBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

func (a *API) SessionUpdate(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var data sessionUpdateBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, apperror.Validation("invalid request body"))
		return
	}

	session, err := a.Sessions.Update(c.Request.Context(), id, data.Name, data.Description, data.Order)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
