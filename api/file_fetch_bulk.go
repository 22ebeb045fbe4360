package api

import (
	"net/http"
	"strconv"

	"vportfolio/portfolio-api/apperror"

	"github.com/gin-gonic/gin"
)

func (a *API) FileFetchBulk(c *gin.Context) {
	var sessionID *uint

	if raw := c.Query("session_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			fail(c, apperror.Validation("session_id must be a positive integer"))
			return
		}

		v := uint(id)
		sessionID = &v
	}

	files, err := a.Files.List(c.Request.Context(), sessionID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}
