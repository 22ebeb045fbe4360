// Package service implements the business operations behind the API
// handlers. Each service gets its database handle (and storage backend
// where needed) injected at construction, and reports failures through
// the apperror taxonomy.
package service

import (
	"context"
	"strings"
	"time"

	"vportfolio/portfolio-api/apperror"
	"vportfolio/portfolio-api/model"
	"vportfolio/portfolio-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Sessions struct {
	db    *gorm.DB
	store storage.Storage
}

func NewSessions(db *gorm.DB, store storage.Storage) *Sessions {
	return &Sessions{db: db, store: store}
}

// SessionSummary is one row of the session listing, enriched with the
// owned file count and the current like counter.
type SessionSummary struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Order       int       `gorm:"column:display_order" json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	FileCount   int64     `json:"fileCount"`
	Likes       int       `json:"likes"`
}

// SessionDetail is a single session with its files in display order.
type SessionDetail struct {
	model.Session
	Files []model.File `json:"files"`
	Likes int          `json:"likes"`
}

func (s *Sessions) Create(ctx context.Context, name, description string, order int) (*model.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("session name is required")
	}

	session := &model.Session{
		Name:        name,
		Description: description,
		Order:       order,
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	return session, nil
}

func (s *Sessions) List(ctx context.Context) ([]SessionSummary, error) {
	var out []SessionSummary

	err := s.db.WithContext(ctx).
		Model(model.Session{}).
		Select(`sessions.id, sessions.name, sessions.description, sessions.display_order, sessions.created_at,
			(SELECT COUNT(*) FROM files f WHERE f.session_id = sessions.id) AS file_count,
			COALESCE(r.likes, 0) AS likes`).
		Joins("LEFT JOIN reactions r ON r.session_id = sessions.id").
		Order("sessions.display_order ASC, sessions.created_at DESC").
		Scan(&out).
		Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if out == nil {
		out = []SessionSummary{}
	}

	return out, nil
}

func (s *Sessions) Get(ctx context.Context, id uint) (*SessionDetail, error) {
	var session model.Session

	err := s.db.WithContext(ctx).First(&session, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("session", id)
		}
		return nil, apperror.Internal(err)
	}

	detail := &SessionDetail{Session: session, Files: []model.File{}}

	err = s.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("display_order ASC, uploaded_at ASC").
		Find(&detail.Files).
		Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	var reaction model.Reaction
	err = s.db.WithContext(ctx).Where("session_id = ?", id).First(&reaction).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, apperror.Internal(err)
	}
	detail.Likes = reaction.Likes

	return detail, nil
}

// Update applies only the provided fields; nil pointers keep the stored
// value.
func (s *Sessions) Update(ctx context.Context, id uint, name, description *string, order *int) (*model.Session, error) {
	var session model.Session

	err := s.db.WithContext(ctx).First(&session, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("session", id)
		}
		return nil, apperror.Internal(err)
	}

	updates := map[string]any{}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperror.Validation("session name is required")
		}
		updates["name"] = trimmed
	}

	if description != nil {
		updates["description"] = *description
	}

	if order != nil {
		updates["display_order"] = *order
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&session).Updates(updates).Error; err != nil {
			return nil, apperror.Internal(err)
		}
	}

	return &session, nil
}

// Delete removes the session with all owned file rows and its reaction
// row in one transaction, then best-effort removes the stored binaries.
// A failed blob delete is logged and never fails the call: metadata
// consistency takes priority over an orphaned blob.
func (s *Sessions) Delete(ctx context.Context, id uint) error {
	var keys []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.Session
		if err := tx.First(&session, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("session", id)
			}
			return apperror.Internal(err)
		}

		err := tx.Model(model.File{}).
			Where("session_id = ?", id).
			Pluck("storage_key", &keys).
			Error
		if err != nil {
			return apperror.Internal(err)
		}

		if err := tx.Where("session_id = ?", id).Delete(model.File{}).Error; err != nil {
			return apperror.Internal(err)
		}

		if err := tx.Where("session_id = ?", id).Delete(model.Reaction{}).Error; err != nil {
			return apperror.Internal(err)
		}

		if err := tx.Delete(model.Session{}, id).Error; err != nil {
			return apperror.Internal(err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			zap.L().Error("Failed to delete stored binary after session delete",
				zap.String("key", key), zap.Uint("sessionID", id), zap.Error(err))
		}
	}

	return nil
}

// Reorder assigns display_order = position for every id in the given
// sequence. Ids that no longer exist match zero rows and are silently
// dropped.
func (s *Sessions) Reorder(ctx context.Context, orderedIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			err := tx.Model(model.Session{}).
				Where("id = ?", id).
				Update("display_order", i).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperror.Internal(err)
	}

	return nil
}

// ReorderFiles does the same for the files of one session. Matching on
// id AND session_id means a file belonging to a different session is
// silently ignored.
func (s *Sessions) ReorderFiles(ctx context.Context, sessionID uint, orderedFileIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedFileIDs {
			err := tx.Model(model.File{}).
				Where("id = ? AND session_id = ?", id, sessionID).
				Update("display_order", i).
				Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperror.Internal(err)
	}

	return nil
}
