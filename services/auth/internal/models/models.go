package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150;not null"        json:"username"`
	FirstName    string    `gorm:"size:150"                 json:"first_name"`
	LastName     string    `gorm:"size:150"                 json:"last_name"`
	PhoneNumber  string    `gorm:"size:32"                  json:"phone_number"`
	Address      string    `gorm:"size:255"                 json:"address"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"size:16;not null"         json:"role"`
	Is2FAEnabled bool      `gorm:"column:is_2fa_enabled;not null;default:false" json:"is_2fa_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"                 json:"id"`
	Token     string `gorm:"size:64;uniqueIndex;not null" json:"-"`
	UserID    uint   `gorm:"index;not null"             json:"user_id"`
	JTI       string `gorm:"size:36;uniqueIndex;not null" json:"jti"`
	ExpiresAt int64  `gorm:"not null"                   json:"expires_at"`
	Revoked   bool   `gorm:"not null;default:false"     json:"revoked"`
}

// OTPCode is the pending one-time code of a user. Codes are single-use and,
// like the login flow they guard, carry no expiry.
type OTPCode struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	Code      string    `gorm:"size:6;not null"`
	CreatedAt time.Time
}

func All() []any {
	return []any{&User{}, &RefreshToken{}, &OTPCode{}}
}
