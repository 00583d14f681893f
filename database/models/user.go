package models

import "time"

// User is created on first interaction and touched on every one after.
// Rows are never hard-deleted; premium downgrades flip the flag.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	TelegramID   int64  `gorm:"uniqueIndex"`
	Username     string `gorm:"size:64"`
	IsPremium    bool
	PremiumUntil time.Time
	ReferralCode string `gorm:"size:16"`
	IsAdmin      bool
	CreatedAt    time.Time
	LastActiveAt time.Time
}
