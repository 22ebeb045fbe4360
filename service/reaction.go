package service

import (
	"context"
	"time"

	"vportfolio/portfolio-api/apperror"
	"vportfolio/portfolio-api/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Reactions struct {
	db *gorm.DB
}

func NewReactions(db *gorm.DB) *Reactions {
	return &Reactions{db: db}
}

// LikeResult is the counter state reported back after any reaction
// operation.
type LikeResult struct {
	SessionID uint `json:"sessionId"`
	Likes     int  `json:"likes"`
}

func (s *Reactions) sessionExists(ctx context.Context, sessionID uint) error {
	var exists bool
	err := s.db.WithContext(ctx).
		Model(model.Session{}).
		Select("count(*) > 0").
		Where("id = ?", sessionID).
		Find(&exists).
		Error
	if err != nil {
		return apperror.Internal(err)
	}
	if !exists {
		return apperror.NotFound("session", sessionID)
	}
	return nil
}

// Like increments the session's counter through a single upsert
// statement. Two concurrent likes both land: there is no read-then-write
// window to lose an increment in.
func (s *Reactions) Like(ctx context.Context, sessionID uint) (*LikeResult, error) {
	if err := s.sessionExists(ctx, sessionID); err != nil {
		return nil, err
	}

	now := time.Now()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"likes":      gorm.Expr("likes + 1"),
			"updated_at": now,
		}),
	}).Create(&model.Reaction{
		SessionID: sessionID,
		Likes:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return s.Likes(ctx, sessionID)
}

// Likes returns the current counter; a session that was never liked
// reports 0. A missing session is NotFound, matching Like.
func (s *Reactions) Likes(ctx context.Context, sessionID uint) (*LikeResult, error) {
	if err := s.sessionExists(ctx, sessionID); err != nil {
		return nil, err
	}

	var reaction model.Reaction
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&reaction).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, apperror.Internal(err)
	}

	return &LikeResult{SessionID: sessionID, Likes: reaction.Likes}, nil
}

// Reset zeroes the counter in place, keeping created_at, and is
// idempotent: resetting a session that was never liked just records a
// zero row.
func (s *Reactions) Reset(ctx context.Context, sessionID uint) (*LikeResult, error) {
	if err := s.sessionExists(ctx, sessionID); err != nil {
		return nil, err
	}

	now := time.Now()

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"likes":      0,
			"updated_at": now,
		}),
	}).Create(&model.Reaction{
		SessionID: sessionID,
		Likes:     0,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &LikeResult{SessionID: sessionID, Likes: 0}, nil
}

// ReactionOverview is one row of the admin dashboard listing.
type ReactionOverview struct {
	model.Reaction
	SessionName string `json:"session_name"`
}

func (s *Reactions) ListAll(ctx context.Context) ([]ReactionOverview, error) {
	out := []ReactionOverview{}

	err := s.db.WithContext(ctx).
		Model(model.Reaction{}).
		Select("reactions.*, s.name AS session_name").
		Joins("LEFT JOIN sessions s ON s.id = reactions.session_id").
		Order("reactions.likes DESC, reactions.updated_at DESC").
		Scan(&out).
		Error
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return out, nil
}
