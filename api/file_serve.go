package api

import (
	"net/http"

	"vportfolio/portfolio-api/apperror"

	"github.com/gin-gonic/gin"
)

// FileServe delivers the stored binary for one file. Backends that serve
// over HTTP themselves (S3) get a redirect, otherwise the object is
// streamed through the API.
func (a *API) FileServe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	file, err := a.Files.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	if url, ok := a.Store.ServeURL(c.Request.Context(), file.StorageKey); ok {
		c.Redirect(http.StatusFound, url)
		return
	}

	rc, size, _, err := a.Store.Open(c.Request.Context(), file.StorageKey)
	if err != nil {
		fail(c, apperror.Storage(err))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, size, file.MimeType, rc, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
