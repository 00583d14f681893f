package models

import "time"

const (
	TrackWalletTrades           = "wallet_trades"
	TrackTokenDeployments       = "token_deployments"
	TrackTokenProfitableWallets = "token_profitable_wallets"
)

// Subscription is a user's standing watch on an address. Address is stored
// lower-cased so the (user, type, address) key matches case-insensitively;
// display casing, if wanted, belongs in a snapshot.
type Subscription struct {
	ID            uint   `gorm:"primaryKey"`
	TelegramID    int64  `gorm:"uniqueIndex:idx_sub"`
	Type          string `gorm:"size:32;uniqueIndex:idx_sub"`
	Address       string `gorm:"size:42;uniqueIndex:idx_sub"`
	Chain         string `gorm:"size:8"`
	Active        bool
	Metadata      string `gorm:"size:256"`
	CreatedAt     time.Time
	LastCheckedAt time.Time
}
