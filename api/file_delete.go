package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) FileDelete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	file, err := a.Files.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "file": file})
}
