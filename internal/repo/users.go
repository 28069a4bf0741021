package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// CreateUser inserts the user and, for vendor sign-ups, its store profile in
// one transaction.
func (r *GormRepo) CreateUser(ctx context.Context, user *models.User, vendor *models.Vendor) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if vendor == nil {
			return nil
		}
		vendor.UserID = user.ID
		return tx.Create(vendor).Error
	})
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) UsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.UserByID(ctx, id)
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// SessionActive is true for a stored, unrevoked, unexpired session whose
// user is still active.
func (r *GormRepo) SessionActive(ctx context.Context, jti string, userID uuid.UUID) (bool, error) {
	var s models.Session
	err := r.DB.WithContext(ctx).Where("jti = ? AND user_id = ?", jti, userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if s.Revoked || !time.Now().Before(s.ExpiresAt) {
		return false, nil
	}

	u, err := r.UserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsActive, nil
}

func (r *GormRepo) RevokeSession(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).Where("jti = ?", jti).Update("revoked", true).Error
}

func (r *GormRepo) RevokeUserSessions(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
