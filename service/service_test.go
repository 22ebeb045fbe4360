package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"vportfolio/portfolio-api/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database. A single connection keeps
// the in-memory store alive and serializes concurrent test writers the
// same way a sqlite file would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.User{}, model.Session{}, model.File{}, model.Reaction{}))

	return db
}

// fakeStore is an in-memory storage.Storage. Deleted keys are recorded
// so tests can assert binaries were cleaned up.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

func (f *fakeStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.put(key, data)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) Open(_ context.Context, key string) (io.ReadCloser, int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, 0, "", fmt.Errorf("no object under key %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), "application/octet-stream", nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) ServeURL(context.Context, string) (string, bool) {
	return "", false
}

// createTestSession is shared by the session, file and reaction tests.
func createTestSession(t *testing.T, s *Sessions, name string) *model.Session {
	t.Helper()

	session, err := s.Create(context.Background(), name, "", 0)
	require.NoError(t, err)
	return session
}

// registerTestFile stores a fake binary and registers it in one go.
func registerTestFile(t *testing.T, store *fakeStore, files *Files, sessionID uint, name string) *model.File {
	t.Helper()

	key := fmt.Sprintf("key-%s-%d", name, sessionID)
	store.put(key, []byte("binary"))

	file, err := files.Register(context.Background(), sessionID, name, key, "", 6)
	require.NoError(t, err)
	return file
}
