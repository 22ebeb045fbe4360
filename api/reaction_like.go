package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) ReactionLike(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	result, err := a.Reactions.Like(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *API) ReactionFetch(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	result, err := a.Reactions.Likes(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *API) ReactionReset(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	result, err := a.Reactions.Reset(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *API) ReactionFetchBulk(c *gin.Context) {
	reactions, err := a.Reactions.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, reactions)
}
