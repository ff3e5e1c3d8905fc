package cache

import (
	"fmt"
)

type EntityType string

const (
	EntitySettlement EntityType = "settlement"
)

type KeyType string

const (
	KeyLastReport KeyType = "report"
	KeyRunLock    KeyType = "lock"
)

// GenerateKey creates a standardized cache key
func GenerateKey(entity EntityType, keyType KeyType, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entity, keyType, value)
}

var (
	SettlementLastReportKey = GenerateKey(EntitySettlement, KeyLastReport, "last")
	SettlementRunLockKey    = GenerateKey(EntitySettlement, KeyRunLock, "run")
)
