package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) SessionDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := a.Sessions.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}
