package api

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"

	"vportfolio/portfolio-api/apperror"
	"vportfolio/portfolio-api/storage"
	"vportfolio/portfolio-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) FileUpload(c *gin.Context) {
	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		fail(c, apperror.Validation("expected a multipart form"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		// MaxBytesReader cuts off bodies whose ContentLength lied about
		// their size mid-parse
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			fail(c, apperror.PayloadTooLarge("request body exceeds the upload limit"))
			return
		}

		fail(c, apperror.Validation("malformed multipart form"))
		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		fail(c, apperror.Validation("no file provided"))
		return
	}
	fh := files[0]

	sessionID, err := strconv.ParseUint(c.PostForm("session_id"), 10, 32)
	if err != nil || sessionID == 0 {
		fail(c, apperror.Validation("session_id must be a positive integer"))
		return
	}

	f, err := validators.FileValidator(fh)
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	key, err := storage.NewKey(strings.ToLower(path.Ext(fh.Filename)))
	if err != nil {
		fail(c, apperror.Internal(err))
		return
	}

	ctx := c.Request.Context()
	contentType := fh.Header.Get("Content-Type")

	if err := a.Store.Save(ctx, key, f, fh.Size, contentType); err != nil {
		fail(c, apperror.Storage(err))
		return
	}

	file, err := a.Files.Register(ctx, uint(sessionID), fh.Filename, key, contentType, fh.Size)
	if err != nil {
		// No row was created, so the stored binary must not linger
		if derr := a.Store.Delete(ctx, key); derr != nil {
			zap.L().Error("Failed to purge binary after rejected upload",
				zap.String("key", key), zap.Error(derr))
		}

		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}
