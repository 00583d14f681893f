package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t,
		"0xdac17f958d2ee523a2206206994597c13d831ec7",
		NormalizeAddress(" 0xDAC17F958D2ee523a2206206994597C13D831ec7 "))
}

func TestDayKeyIsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 2024-01-02 03:00 UTC+9 is still 2024-01-01 in UTC.
	ts := time.Date(2024, 1, 2, 3, 0, 0, 0, loc)
	assert.Equal(t, "2024-01-01", DayKey(ts))
}

func TestRateLimitExceeded(t *testing.T) {
	assert.False(t, RateLimitExceeded(0, 3, false))
	assert.False(t, RateLimitExceeded(2, 3, false))
	assert.True(t, RateLimitExceeded(3, 3, false))
	assert.True(t, RateLimitExceeded(10, 3, false))

	// Premium bypasses the ceiling regardless of count.
	assert.False(t, RateLimitExceeded(3, 3, true))
	assert.False(t, RateLimitExceeded(1000, 3, true))
}
