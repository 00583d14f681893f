package models

const (
	TokenScan  = "token_scan"
	WalletScan = "wallet_scan"
)

// ScanCount enforces the free-tier daily ceiling: one row per
// (user, scan type, UTC day), monotonically incremented. Old days are
// pruned, never zeroed.
type ScanCount struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID int64  `gorm:"uniqueIndex:idx_scan"`
	ScanType   string `gorm:"size:32;uniqueIndex:idx_scan"`
	Day        string `gorm:"size:10;uniqueIndex:idx_scan"`
	Count      int
}
