package models

import "time"

// KOLWallet is a curated reference entry, not user-owned.
type KOLWallet struct {
	ID          uint   `gorm:"primaryKey"`
	Address     string `gorm:"size:42;uniqueIndex"`
	Name        string `gorm:"size:64"`
	Description string `gorm:"size:256"`
	Twitter     string `gorm:"size:64"`
	Telegram    string `gorm:"size:64"`
	AddedAt     time.Time
}
