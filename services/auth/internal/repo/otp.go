package repo

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/auth/internal/models"
)

func locked(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// SaveOTP replaces the user's pending code.
func (r *GormRepo) SaveOTP(ctx context.Context, userID uint, code string) error {
	otp := models.OTPCode{UserID: userID, Code: code, CreatedAt: time.Now().UTC()}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "created_at"}),
	}).Create(&otp).Error
}

// ConsumeOTP deletes the pending code when it matches. It reports false for a
// wrong code or when no code is pending.
func (r *GormRepo) ConsumeOTP(ctx context.Context, userID uint, code string) (bool, error) {
	ok := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var otp models.OTPCode
		if err := locked(tx).Where("user_id = ?", userID).First(&otp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
			return nil
		}
		ok = true
		return tx.Delete(&otp).Error
	})
	return ok, err
}
