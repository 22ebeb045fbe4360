// Package validators contains input validation helpers shared by the API
// handlers.
package validators

import (
	"io"
	"mime/multipart"
	"path"
	"strings"

	"vportfolio/portfolio-api/apperror"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/viper"
)

const maxFileNameSize = 255

// AllowedExtensions is the fixed upload allowlist. Anything else is
// rejected as unsupported media.
var AllowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".webm": true,
	".ogg":  true,
	".mov":  true,
	".avi":  true,
}

// FileValidator checks the uploaded file header and contents: extension
// allowlist, declared content type, configured size limit and a content
// sniff of the actual bytes. The returned file is rewound to the start.
func FileValidator(fh *multipart.FileHeader) (multipart.File, error) {
	if fh == nil {
		return nil, apperror.Validation("no file provided")
	}

	if len(fh.Filename) > maxFileNameSize {
		return nil, apperror.Validation("file name is too long")
	}

	ext := strings.ToLower(path.Ext(fh.Filename))
	if !AllowedExtensions[ext] {
		return nil, apperror.UnsupportedMedia("unsupported file type")
	}

	// Check the declared header first which is easy to spoof, but faster
	// for legit clients
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "video/") {
		return nil, apperror.UnsupportedMedia("unsupported file type")
	}

	if fh.Size > viper.GetInt64("upload.max_size") {
		return nil, apperror.PayloadTooLarge("file too large")
	}

	// And now check the actual bytes to catch malicious clients
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	mime, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, apperror.Internal(err)
	}

	if !strings.HasPrefix(mime.String(), "image/") && !strings.HasPrefix(mime.String(), "video/") {
		f.Close()
		return nil, apperror.UnsupportedMedia("file contents don't match an image or video type")
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, apperror.Internal(err)
	}

	return f, nil
}
