package service

import (
	"context"
	"path"
	"strings"
	"time"

	"vportfolio/portfolio-api/apperror"
	"vportfolio/portfolio-api/model"
	"vportfolio/portfolio-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Files struct {
	db    *gorm.DB
	store storage.Storage
}

func NewFiles(db *gorm.DB, store storage.Storage) *Files {
	return &Files{db: db, store: store}
}

// mimeByExt maps recognized upload extensions to their normalized MIME
// type.
var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
}

// NormalizeMime picks the stored MIME type: the extension mapping when
// the filename is recognized, else the detected hint, else octet-stream.
func NormalizeMime(filename, hint string) string {
	if m, ok := mimeByExt[strings.ToLower(path.Ext(filename))]; ok {
		return m
	}
	if hint != "" {
		return hint
	}
	return "application/octet-stream"
}

// Register records an already-stored binary as a file of the session.
// The max+insert runs in a transaction holding the session row lock, so
// two concurrent uploads to the same session can never end up with the
// same order value.
func (s *Files) Register(ctx context.Context, sessionID uint, displayName, storageKey, mimeHint string, size int64) (*model.File, error) {
	if sessionID == 0 {
		return nil, apperror.Validation("session_id must be a positive integer")
	}

	// Never create a row pointing at a binary that isn't there
	stored, err := s.store.Exists(ctx, storageKey)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if !stored {
		return nil, apperror.Storage(nil)
	}

	mimeType := NormalizeMime(displayName, mimeHint)
	now := time.Now()

	var file model.File

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The session row stays locked until commit, so registrations
		// into one session run strictly one after another and the order
		// subquery below can't read a stale maximum on postgres. sqlite
		// has no row locks and serializes on its single writer instead.
		var session model.Session
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, sessionID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("session", sessionID)
			}
			return apperror.Internal(err)
		}

		err = tx.Exec(
			`INSERT INTO files (display_name, storage_key, mime_type, session_id, display_order, size, uploaded_at)
			 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(display_order) + 1, 0) FROM files f WHERE f.session_id = ?), ?, ?)`,
			displayName, storageKey, mimeType, sessionID, sessionID, size, now,
		).Error
		if err != nil {
			return apperror.Internal(err)
		}

		if err := tx.Where("storage_key = ?", storageKey).First(&file).Error; err != nil {
			return apperror.Internal(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// List returns files ordered for display, scoped to one session when
// sessionID is non-nil.
func (s *Files) List(ctx context.Context, sessionID *uint) ([]model.File, error) {
	files := []model.File{}

	q := s.db.WithContext(ctx)
	if sessionID != nil {
		q = q.Where("session_id = ?", *sessionID).Order("display_order ASC, uploaded_at ASC")
	} else {
		q = q.Order("session_id, display_order ASC, uploaded_at ASC")
	}

	if err := q.Find(&files).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	return files, nil
}

// Get returns one file row by id.
func (s *Files) Get(ctx context.Context, id uint) (*model.File, error) {
	var file model.File

	err := s.db.WithContext(ctx).First(&file, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("file", id)
		}
		return nil, apperror.Internal(err)
	}

	return &file, nil
}

// Delete removes the metadata row first and then best-effort removes the
// binary. An orphaned blob is preferable to a row referencing a missing
// file, so storage failures are logged without failing the call.
func (s *Files) Delete(ctx context.Context, id uint) (*model.File, error) {
	var file model.File

	err := s.db.WithContext(ctx).First(&file, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("file", id)
		}
		return nil, apperror.Internal(err)
	}

	if err := s.db.WithContext(ctx).Delete(model.File{}, id).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	if err := s.store.Delete(ctx, file.StorageKey); err != nil {
		zap.L().Error("Failed to delete stored binary",
			zap.String("key", file.StorageKey), zap.Uint("fileID", id), zap.Error(err))
	}

	return &file, nil
}
