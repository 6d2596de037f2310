package model

import (
	"time"
)

// RevokedToken records a JWT that was invalidated before its natural expiry
// (logout). Rows past their expiry are swept by a scheduled job.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JTI       string    `gorm:"uniqueIndex;not null;type:varchar(64)" json:"jti"`
	UserID    string    `gorm:"type:uuid;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}
