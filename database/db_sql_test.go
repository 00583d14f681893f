package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"token-sentry/database/models"
)

// Exercises the real gorm mysql dialect against a mocked connection, so the
// generated upsert SQL is covered without a live database.
func newMockDB(t *testing.T) (*RawDB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	return &RawDB{db: gormDB, logger: zap.S().Named("[db]")}, mock
}

func TestIncrementScanCountGeneratesCounterUpsert(t *testing.T) {
	db, mock := newMockDB(t)

	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO `scan_counts` .*ON DUPLICATE KEY UPDATE `count`=count \\+ 1").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}

	for i := 0; i < 3; i++ {
		db.IncrementScanCount(100, models.TokenScan, "2026-08-30")
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScanCountReadsCounterRow(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "telegram_id", "scan_type", "day", "count"}).
		AddRow(1, 100, models.TokenScan, "2026-08-30", 3)
	mock.ExpectQuery("SELECT \\* FROM `scan_counts`").WillReturnRows(rows)

	assert.Equal(t, 3, db.GetScanCount(100, models.TokenScan, "2026-08-30"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScanCountMissingRowIsZero(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `scan_counts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "telegram_id", "scan_type", "day", "count"}))

	assert.Equal(t, 0, db.GetScanCount(100, models.WalletScan, "2026-08-30"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
