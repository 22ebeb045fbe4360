package validators

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"vportfolio/portfolio-api/apperror"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

// makeFileHeader builds a real multipart.FileHeader the way gin would
// hand it to the handler.
func makeFileHeader(t *testing.T, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["file"][0]
}

func TestFileValidatorAcceptsImages(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	fh := makeFileHeader(t, "photo.jpg", "image/jpeg", jpegMagic)

	f, err := FileValidator(fh)
	require.NoError(t, err)
	defer f.Close()

	// The file comes back rewound
	buf := make([]byte, 3)
	_, err = f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, jpegMagic[:3], buf)
}

func TestFileValidatorRejectsUnknownExtension(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	fh := makeFileHeader(t, "notes.txt", "text/plain", []byte("hello"))

	_, err := FileValidator(fh)
	assert.Equal(t, apperror.KindUnsupportedMedia, apperror.KindOf(err))
}

func TestFileValidatorRejectsMismatchedDeclaredType(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	fh := makeFileHeader(t, "photo.jpg", "text/plain", jpegMagic)

	_, err := FileValidator(fh)
	assert.Equal(t, apperror.KindUnsupportedMedia, apperror.KindOf(err))
}

func TestFileValidatorSniffsContents(t *testing.T) {
	viper.Set("upload.max_size", int64(1<<20))

	// Right extension, right header, wrong bytes
	fh := makeFileHeader(t, "photo.jpg", "image/jpeg", []byte("just some text pretending"))

	_, err := FileValidator(fh)
	assert.Equal(t, apperror.KindUnsupportedMedia, apperror.KindOf(err))
}

func TestFileValidatorEnforcesSizeLimit(t *testing.T) {
	viper.Set("upload.max_size", int64(4))

	fh := makeFileHeader(t, "photo.jpg", "image/jpeg", jpegMagic)

	_, err := FileValidator(fh)
	assert.Equal(t, apperror.KindPayloadTooLarge, apperror.KindOf(err))
}

func TestFileValidatorRejectsNil(t *testing.T) {
	_, err := FileValidator(nil)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
