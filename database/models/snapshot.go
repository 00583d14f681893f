package models

import "time"

// Best-effort denormalized caches of externally fetched facts. The
// analytics API stays authoritative; these only spare repeat lookups.

type TokenSnapshot struct {
	ID        uint   `gorm:"primaryKey"`
	Chain     string `gorm:"size:8;uniqueIndex:idx_token_snap"`
	Address   string `gorm:"size:42;uniqueIndex:idx_token_snap"`
	Name      string `gorm:"size:64"`
	Symbol    string `gorm:"size:32"`
	Deployer  string `gorm:"size:42"`
	MarketCap float64
	UpdatedAt time.Time
}

type WalletSnapshot struct {
	ID        uint   `gorm:"primaryKey"`
	Chain     string `gorm:"size:8;uniqueIndex:idx_wallet_snap"`
	Address   string `gorm:"size:42;uniqueIndex:idx_wallet_snap"`
	WinRate   float64
	PnlUsd    float64
	UpdatedAt time.Time
}
