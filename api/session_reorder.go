package api

import (
	"net/http"

	"vportfolio/portfolio-api/apperror"

	"github.com/gin-gonic/gin"
)

type sessionReorderBody struct {
	OrderedIDs []uint `json:"orderedIds"`
}

// SessionReorder assigns each listed session its position in the given
// sequence. Whether every existing session is listed is the caller's
// responsibility.
func (a *API) SessionReorder(c *gin.Context) {
	var data sessionReorderBody
	if err := c.ShouldBind(&data); err != nil || data.OrderedIDs == nil {
		fail(c, apperror.Validation("orderedIds must be an array of session ids"))
		return
	}

	if err := a.Sessions.Reorder(c.Request.Context(), data.OrderedIDs); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sessions reordered"})
}

type fileReorderBody struct {
	OrderedFileIDs []uint `json:"orderedFileIds"`
}

func (a *API) SessionReorderFiles(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var data fileReorderBody
	if err := c.ShouldBind(&data); err != nil || data.OrderedFileIDs == nil {
		fail(c, apperror.Validation("orderedFileIds must be an array of file ids"))
		return
	}

	if err := a.Sessions.ReorderFiles(c.Request.Context(), id, data.OrderedFileIDs); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "files reordered"})
}
