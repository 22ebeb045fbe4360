package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"vportfolio/portfolio-api/middleware"
	"vportfolio/portfolio-api/model"
	"vportfolio/portfolio-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

// newTestAPI wires a full router around an in-memory database and a
// temp-dir storage backend.
func newTestAPI(t *testing.T) *API {
	return newTestAPIUploadLimit(t, 10<<20)
}

func newTestAPIUploadLimit(t *testing.T, maxUpload int64) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("upload.max_size", maxUpload)
	viper.Set("auth.jwt_secret", "test-secret")
	viper.Set("auth.token_ttl_hours", 1)
	viper.Set("host.cors_origins", []string{"http://localhost:3000"})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.User{}, model.Session{}, model.File{}, model.Reaction{}))

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	return New(db, store)
}

func doJSON(t *testing.T, a *API, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into))
}

// login creates the account through the service and logs in over HTTP,
// returning the auth cookies.
func login(t *testing.T, a *API, username, password, role string) []*http.Cookie {
	t.Helper()

	_, err := a.Users.Create(t.Context(), username, password, role)
	require.NoError(t, err)

	w := doJSON(t, a, "POST", "/api/auth/login", gin.H{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	return w.Result().Cookies()
}

func uploadFile(t *testing.T, a *API, sessionID uint, filename string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("session_id", fmt.Sprint(sessionID)))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestSessionUploadFlow(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(t, a, "POST", "/api/sessions", gin.H{"name": "Trip", "description": "Summer"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session model.Session
	decode(t, w, &session)
	assert.Equal(t, "Trip", session.Name)

	w = uploadFile(t, a, session.ID, "photo.jpg", jpegMagic)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var file model.File
	decode(t, w, &file)
	assert.Equal(t, "photo.jpg", file.DisplayName)
	assert.Equal(t, "image/jpeg", file.MimeType)
	assert.Zero(t, file.Order)

	w = doJSON(t, a, "GET", fmt.Sprintf("/api/sessions/%d", session.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Name  string       `json:"name"`
		Files []model.File `json:"files"`
		Likes int          `json:"likes"`
	}
	decode(t, w, &detail)
	assert.Equal(t, "Trip", detail.Name)
	require.Len(t, detail.Files, 1)
	assert.Equal(t, file.ID, detail.Files[0].ID)

	// The stored binary is reachable
	w = doJSON(t, a, "GET", fmt.Sprintf("/api/files/%d/raw", file.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, jpegMagic, w.Body.Bytes())
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(t, a, "POST", "/api/sessions", gin.H{"name": "Trip"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session model.Session
	decode(t, w, &session)

	w = uploadFile(t, a, session.ID, "photo.jpg", []byte("plainly not a jpeg"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	// Nothing was registered
	w = doJSON(t, a, "GET", "/api/files", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestSessionNotFound(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(t, a, "GET", "/api/sessions/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "not_found", body["error"])
}

func TestLikeFlow(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(t, a, "POST", "/api/sessions", gin.H{"name": "Trip"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session model.Session
	decode(t, w, &session)

	var result struct {
		SessionID uint `json:"sessionId"`
		Likes     int  `json:"likes"`
	}

	w = doJSON(t, a, "POST", fmt.Sprintf("/api/sessions/%d/like", session.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.Equal(t, 1, result.Likes)

	w = doJSON(t, a, "POST", fmt.Sprintf("/api/sessions/%d/like", session.ID), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.Equal(t, 2, result.Likes)

	w = doJSON(t, a, "POST", "/api/sessions/999/like", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminGates(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(t, a, "POST", "/api/sessions", gin.H{"name": "Trip"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session model.Session
	decode(t, w, &session)
	target := fmt.Sprintf("/api/sessions/%d", session.ID)

	// No cookie at all
	w = doJSON(t, a, "DELETE", target, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// An editor is authenticated but not privileged
	editorCookies := login(t, a, "eddy", "secret", model.RoleEditor)
	w = doJSON(t, a, "DELETE", target, nil, editorCookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminCookies := login(t, a, "root", "secret", model.RoleAdmin)
	w = doJSON(t, a, "DELETE", target, nil, adminCookies)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, "DELETE", target, nil, adminCookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAPI(t)

	_, err := a.Users.Create(t.Context(), "admin", "right-password", model.RoleAdmin)
	require.NoError(t, err)

	w := doJSON(t, a, "POST", "/api/auth/login", gin.H{"username": "admin", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var withUser map[string]any
	decode(t, w, &withUser)

	w = doJSON(t, a, "POST", "/api/auth/login", gin.H{"username": "ghost", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var withoutUser map[string]any
	decode(t, w, &withoutUser)

	// The response can't be used to probe which usernames exist
	assert.Equal(t, withUser["error"], withoutUser["error"])
	assert.Equal(t, withUser["message"], withoutUser["message"])
}

func TestUserRoutes(t *testing.T) {
	a := newTestAPI(t)

	adminCookies := login(t, a, "root", "secret", model.RoleAdmin)

	w := doJSON(t, a, "POST", "/api/users", gin.H{"username": "eddy", "password": "secret", "role": "editor"}, adminCookies)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, a, "POST", "/api/users", gin.H{"username": "eddy", "password": "secret"}, adminCookies)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, a, "GET", "/api/users", nil, adminCookies)
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]any
	decode(t, w, &users)
	assert.Len(t, users, 2)
	for _, u := range users {
		_, leaked := u["password_hash"]
		assert.False(t, leaked, "password hashes must not serialize")
	}
}

func TestUploadOversizeBodyRejected(t *testing.T) {
	a := newTestAPIUploadLimit(t, 1024)

	w := doJSON(t, a, "POST", "/api/sessions", gin.H{"name": "Trip"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var session model.Session
	decode(t, w, &session)

	body := func() (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="big.jpg"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(append(jpegMagic, bytes.Repeat([]byte{0}, 4096)...))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("session_id", fmt.Sprint(session.ID)))
		require.NoError(t, mw.Close())
		return &buf, mw.FormDataContentType()
	}

	// Honest client: the declared length alone gets the request rejected
	buf, ct := body()
	req := httptest.NewRequest("POST", "/api/files", buf)
	req.Header.Set("Content-Type", ct)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// Lying client: no declared length, the body reader cuts it off
	// mid-parse and the answer is still 413, not 500
	buf, ct = body()
	req = httptest.NewRequest("POST", "/api/files", io.NopCloser(buf))
	req.Header.Set("Content-Type", ct)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp map[string]any
	decode(t, w, &resp)
	assert.Equal(t, "payload_too_large", resp["error"])
}

func TestLoginCookieSecureFlag(t *testing.T) {
	a := newTestAPI(t)

	viper.Set("host.ssl_enabled", true)
	t.Cleanup(func() { viper.Set("host.ssl_enabled", false) })

	cookies := login(t, a, "root", "secret", model.RoleAdmin)

	var authCookie *http.Cookie
	for _, ck := range cookies {
		if ck.Name == middleware.AuthCookie {
			authCookie = ck
		}
	}

	require.NotNil(t, authCookie)
	assert.True(t, authCookie.Secure)
	assert.True(t, authCookie.HttpOnly)
}
