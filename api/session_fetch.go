package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) SessionFetch(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	detail, err := a.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (a *API) SessionFetchBulk(c *gin.Context) {
	sessions, err := a.Sessions.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}
