package service

import (
	"context"
	"errors"

	"vportfolio/portfolio-api/apperror"
	"vportfolio/portfolio-api/model"
	"vportfolio/portfolio-api/security"
	"vportfolio/portfolio-api/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 4

type Users struct {
	db    *gorm.DB
	argon *security.ArgonHash

	// Verified against when a login names an unknown user, so the
	// response time doesn't reveal whether the username exists
	dummyHash string
}

func NewUsers(db *gorm.DB) *Users {
	argon := security.New()

	dummy, err := argon.GenerateFromPassword(util.RandStr(24))
	if err != nil {
		zap.L().Warn("Failed to generate dummy login hash", zap.Error(err))
	}

	return &Users{db: db, argon: argon, dummyHash: dummy}
}

func (s *Users) Create(ctx context.Context, username, password, role string) (*model.User, error) {
	if username == "" {
		return nil, apperror.Validation("username is required")
	}
	if password == "" {
		return nil, apperror.Validation("password is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.Validation("password must be at least 4 characters long")
	}

	if role == "" {
		role = model.RoleEditor
	}
	if !model.ValidRole(role) {
		return nil, apperror.Validation("role must be admin or editor")
	}

	hash, err := s.argon.GenerateFromPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}

	// The unique constraint on username is the single source of truth, so
	// two concurrent registrations of the same name can't both pass a
	// pre-check
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("username already exists")
		}
		return nil, apperror.Internal(err)
	}

	return user, nil
}

// Login checks the credentials and returns the account. Any mismatch
// yields the same Unauthorized error so callers can't tell a bad
// username from a bad password.
func (s *Users) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, apperror.Validation("username and password are required")
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Burn the same hashing work as a real verification
			s.argon.VerifyPasswd(password, s.dummyHash)
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, apperror.Internal(err)
	}

	ok, err := s.argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	return &user, nil
}

// List returns every account for admins and only the actor's own row for
// everyone else. Password hashes never serialize.
func (s *Users) List(ctx context.Context, actor *model.User) ([]model.User, error) {
	users := []model.User{}

	q := s.db.WithContext(ctx).Order("created_at DESC")
	if !actor.IsAdmin() {
		q = q.Where("id = ?", actor.ID)
	}

	if err := q.Find(&users).Error; err != nil {
		return nil, apperror.Internal(err)
	}

	return users, nil
}

func (s *Users) ChangePassword(ctx context.Context, actor *model.User, targetID uint, newPassword, currentPassword string) error {
	if actor.ID != targetID && !actor.IsAdmin() {
		return apperror.Forbidden("you can only change your own password")
	}

	if len(newPassword) < minPasswordLength {
		return apperror.Validation("password must be at least 4 characters long")
	}

	var target model.User
	err := s.db.WithContext(ctx).First(&target, targetID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("user", targetID)
		}
		return apperror.Internal(err)
	}

	// Admins may reset anyone without the current password; a self-change
	// by a non-admin must prove it
	if !actor.IsAdmin() {
		if currentPassword == "" {
			return apperror.Forbidden("current password is required")
		}

		ok, err := s.argon.VerifyPasswd(currentPassword, target.PasswordHash)
		if err != nil {
			return apperror.Internal(err)
		}
		if !ok {
			return apperror.Forbidden("current password is incorrect")
		}
	}

	hash, err := s.argon.GenerateFromPassword(newPassword)
	if err != nil {
		return apperror.Internal(err)
	}

	err = s.db.WithContext(ctx).
		Model(model.User{}).
		Where("id = ?", targetID).
		Update("password_hash", hash).
		Error
	if err != nil {
		return apperror.Internal(err)
	}

	return nil
}

// Delete removes an account. The primary admin is permanently protected
// and the last remaining admin can never be deleted; both checks run
// inside the delete transaction so a concurrent delete can't slip past
// the admin count.
func (s *Users) Delete(ctx context.Context, actor *model.User, targetID uint) error {
	if !actor.IsAdmin() {
		return apperror.Forbidden("admin privileges required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target model.User
		if err := tx.First(&target, targetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperror.NotFound("user", targetID)
			}
			return apperror.Internal(err)
		}

		if target.Username == model.PrimaryAdminUsername {
			return apperror.Forbidden("the primary admin can't be deleted")
		}

		if target.IsAdmin() {
			var admins int64
			err := tx.Model(model.User{}).
				Where("role = ?", model.RoleAdmin).
				Count(&admins).
				Error
			if err != nil {
				return apperror.Internal(err)
			}

			if admins <= 1 {
				return apperror.Conflict("can't delete the last remaining admin")
			}
		}

		if err := tx.Delete(model.User{}, targetID).Error; err != nil {
			return apperror.Internal(err)
		}

		return nil
	})
}
