package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"token-sentry/config"
	"token-sentry/database/models"
)

// RawDB is the durable store behind the bot and the poller: users,
// quota counters, tracking subscriptions, the KOL list and the snapshot
// caches. Expected misses return nil or zero values, never errors.
type RawDB struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func New(cfg *config.DBConfig) *RawDB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.User, cfg.Password, cfg.Host, cfg.DB)
	db, dbErr := gorm.Open(mysql.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if dbErr != nil {
		panic(dbErr)
	}

	for _, model := range []any{
		&models.User{},
		&models.ScanCount{},
		&models.Subscription{},
		&models.KOLWallet{},
		&models.TokenSnapshot{},
		&models.WalletSnapshot{},
		&models.Meta{},
	} {
		if dbErr = db.AutoMigrate(model); dbErr != nil {
			panic(dbErr)
		}
	}

	rawDB := &RawDB{
		db:     db,
		logger: zap.S().Named("[db]"),
	}
	rawDB.SetMeta(models.SchemaVersionKey, "1")
	return rawDB
}

// NormalizeAddress lower-cases an address so that the (user, type, address)
// subscription key and the snapshot keys match case-insensitively.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// DayKey is the calendar-day component of the quota key, in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// RateLimitExceeded is the free-tier ceiling decision: premium users are
// never limited, everyone else is cut off once count reaches the limit.
func RateLimitExceeded(count, limit int, premium bool) bool {
	if premium {
		return false
	}
	return count >= limit
}

// --- users ---

func (db *RawDB) GetUser(telegramID int64) *models.User {
	var user models.User
	if err := db.db.Where(&models.User{TelegramID: telegramID}).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			db.logger.Errorf("Get user [%d] error: %s", telegramID, err.Error())
		}
		return nil
	}
	return &user
}

// EnsureUser creates the user on first interaction and refreshes
// last-active either way.
func (db *RawDB) EnsureUser(telegramID int64, username string) *models.User {
	user := db.GetUser(telegramID)
	if user == nil {
		user = &models.User{
			TelegramID:   telegramID,
			Username:     username,
			CreatedAt:    time.Now(),
			LastActiveAt: time.Now(),
		}
		if err := db.db.Create(user).Error; err != nil {
			db.logger.Errorf("Create user [%d] error: %s", telegramID, err.Error())
		}
		return user
	}

	user.LastActiveAt = time.Now()
	if username != "" && user.Username != username {
		user.Username = username
	}
	db.saveUser(user)
	return user
}

func (db *RawDB) saveUser(user *models.User) {
	if err := db.db.Save(user).Error; err != nil {
		db.logger.Errorf("Save user [%d] error: %s", user.TelegramID, err.Error())
	}
}

// SetPremiumStatus flips the premium flag. When enabling, durationDays
// extends from now or from the current expiry, whichever is later.
func (db *RawDB) SetPremiumStatus(telegramID int64, premium bool, durationDays int) error {
	user := db.GetUser(telegramID)
	if user == nil {
		return fmt.Errorf("user %d not found", telegramID)
	}

	user.IsPremium = premium
	if premium {
		from := time.Now()
		if user.PremiumUntil.After(from) {
			from = user.PremiumUntil
		}
		user.PremiumUntil = from.AddDate(0, 0, durationDays)
	} else {
		user.PremiumUntil = time.Time{}
	}

	return db.db.Save(user).Error
}

// CleanupExpiredPremium downgrades users whose premium window has passed.
// Cron-driven; returns the number of downgraded users.
func (db *RawDB) CleanupExpiredPremium() int {
	result := db.db.Model(&models.User{}).
		Where("is_premium = ? AND premium_until < ?", true, time.Now()).
		Update("is_premium", false)
	if result.Error != nil {
		db.logger.Errorf("Cleanup expired premium error: %s", result.Error.Error())
		return 0
	}
	if result.RowsAffected > 0 {
		db.logger.Infof("Downgraded [%d] expired premium users", result.RowsAffected)
	}
	db.SetMeta(models.LastPremiumSweepAt, time.Now().UTC().Format(time.RFC3339))
	return int(result.RowsAffected)
}

// --- scan quota ---

func (db *RawDB) GetScanCount(telegramID int64, scanType, day string) int {
	var record models.ScanCount
	err := db.db.Where(&models.ScanCount{TelegramID: telegramID, ScanType: scanType, Day: day}).First(&record).Error
	if err != nil {
		return 0
	}
	return record.Count
}

// IncrementScanCount is an atomic increment-or-create on the
// (user, scan type, day) key.
func (db *RawDB) IncrementScanCount(telegramID int64, scanType, day string) {
	record := models.ScanCount{TelegramID: telegramID, ScanType: scanType, Day: day, Count: 1}
	err := db.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}, {Name: "scan_type"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("count + 1")}),
	}).Create(&record).Error
	if err != nil {
		db.logger.Errorf("Increment scan count [%d/%s/%s] error: %s", telegramID, scanType, day, err.Error())
	}
}

// CheckRateLimit reports whether the user's daily quota for scanType is
// already spent. Premium users always pass.
func (db *RawDB) CheckRateLimit(user *models.User, scanType string, limit int) bool {
	if user == nil {
		return true
	}
	count := db.GetScanCount(user.TelegramID, scanType, DayKey(time.Now()))
	return RateLimitExceeded(count, limit, user.IsPremium)
}

// PruneScanCounts drops counter rows older than keepDays. Date rollover
// resets quotas implicitly; this just bounds table growth.
func (db *RawDB) PruneScanCounts(keepDays int) {
	cutoff := DayKey(time.Now().AddDate(0, 0, -keepDays))
	result := db.db.Where("day < ?", cutoff).Delete(&models.ScanCount{})
	if result.Error != nil {
		db.logger.Errorf("Prune scan counts error: %s", result.Error.Error())
		return
	}
	if result.RowsAffected > 0 {
		db.logger.Infof("Pruned [%d] scan count rows older than %s", result.RowsAffected, cutoff)
	}
	db.SetMeta(models.LastPruneDateKey, DayKey(time.Now()))
}

// --- subscriptions ---

// SaveSubscription normalizes the target address and upserts by
// (user, type, address); the new write's fields win.
func (db *RawDB) SaveSubscription(sub *models.Subscription) error {
	sub.Address = NormalizeAddress(sub.Address)
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	return db.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}, {Name: "type"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"chain", "active", "metadata", "last_checked_at"}),
	}).Create(sub).Error
}

func (db *RawDB) GetSubscription(telegramID int64, subType, address string) *models.Subscription {
	var sub models.Subscription
	err := db.db.Where(&models.Subscription{
		TelegramID: telegramID,
		Type:       subType,
		Address:    NormalizeAddress(address),
	}).First(&sub).Error
	if err != nil {
		return nil
	}
	return &sub
}

func (db *RawDB) GetActiveSubscriptionsForUser(telegramID int64) []*models.Subscription {
	subs := make([]*models.Subscription, 0)
	db.db.Where("telegram_id = ? AND active = ?", telegramID, true).Find(&subs)
	return subs
}

// GetAllActiveSubscriptions is the poller's bulk read. Unbounded scan,
// acceptable at this scale.
func (db *RawDB) GetAllActiveSubscriptions() []*models.Subscription {
	subs := make([]*models.Subscription, 0)
	db.db.Where("active = ?", true).Find(&subs)
	return subs
}

// DeactivateSubscription flips the active flag off; the row is kept.
func (db *RawDB) DeactivateSubscription(telegramID int64, subType, address string) bool {
	result := db.db.Model(&models.Subscription{}).
		Where("telegram_id = ? AND type = ? AND address = ?", telegramID, subType, NormalizeAddress(address)).
		Update("active", false)
	return result.RowsAffected > 0
}

// TouchSubscriptionChecked re-arms the advisory last-checked timestamp.
func (db *RawDB) TouchSubscriptionChecked(id uint) {
	db.db.Model(&models.Subscription{}).Where("id = ?", id).Update("last_checked_at", time.Now())
}

// --- KOL list ---

func (db *RawDB) GetKOLWallets() []*models.KOLWallet {
	wallets := make([]*models.KOLWallet, 0)
	db.db.Order("added_at").Find(&wallets)
	return wallets
}

func (db *RawDB) SaveKOLWallet(wallet *models.KOLWallet) error {
	wallet.Address = NormalizeAddress(wallet.Address)
	if wallet.AddedAt.IsZero() {
		wallet.AddedAt = time.Now()
	}
	return db.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "twitter", "telegram"}),
	}).Create(wallet).Error
}

// --- snapshot caches ---

func (db *RawDB) SaveTokenSnapshot(snap *models.TokenSnapshot) {
	snap.Address = NormalizeAddress(snap.Address)
	snap.UpdatedAt = time.Now()
	err := db.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "symbol", "deployer", "market_cap", "updated_at"}),
	}).Create(snap).Error
	if err != nil {
		db.logger.Warnf("Save token snapshot [%s/%s] error: %s", snap.Chain, snap.Address, err.Error())
	}
}

func (db *RawDB) GetTokenSnapshot(chain, address string) *models.TokenSnapshot {
	var snap models.TokenSnapshot
	err := db.db.Where(&models.TokenSnapshot{Chain: chain, Address: NormalizeAddress(address)}).First(&snap).Error
	if err != nil {
		return nil
	}
	return &snap
}

func (db *RawDB) SaveWalletSnapshot(snap *models.WalletSnapshot) {
	snap.Address = NormalizeAddress(snap.Address)
	snap.UpdatedAt = time.Now()
	err := db.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chain"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"win_rate", "pnl_usd", "updated_at"}),
	}).Create(snap).Error
	if err != nil {
		db.logger.Warnf("Save wallet snapshot [%s/%s] error: %s", snap.Chain, snap.Address, err.Error())
	}
}

// --- meta ---

func (db *RawDB) GetMeta(key, defaultVal string) string {
	var meta models.Meta
	if err := db.db.Where(&models.Meta{Key: key}).First(&meta).Error; err != nil {
		return defaultVal
	}
	return meta.Val
}

func (db *RawDB) SetMeta(key, val string) {
	err := db.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"val"}),
	}).Create(&models.Meta{Key: key, Val: val}).Error
	if err != nil {
		db.logger.Warnf("Set meta [%s] error: %s", key, err.Error())
	}
}

// --- counts for the status API ---

func (db *RawDB) CountActiveSubscriptions() int64 {
	var count int64
	db.db.Model(&models.Subscription{}).Where("active = ?", true).Count(&count)
	return count
}

func (db *RawDB) CountUsers() int64 {
	var count int64
	db.db.Model(&models.User{}).Count(&count)
	return count
}

func (db *RawDB) CountPremiumUsers() int64 {
	var count int64
	db.db.Model(&models.User{}).Where("is_premium = ?", true).Count(&count)
	return count
}
