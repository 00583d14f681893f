package models

import (
	"gorm.io/gorm"
)

const (
	SchemaVersionKey   = "schema_version"
	LastPruneDateKey   = "last_prune_date"
	LastPremiumSweepAt = "last_premium_sweep_at"
)

type Meta struct {
	gorm.Model
	Key string `gorm:"unique"`
	Val string
}
