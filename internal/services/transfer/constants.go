package transfer

import (
	"time"

	"bankcore/internal/utils/pagination"
)

const (
	DefaultOperationTimeout = 10 * time.Second
	DefaultPageSize         = pagination.DefaultSize
	MaxPageSize             = pagination.MaxSize
)

// Operation names reported to MetricsCollector.
const (
	OpTransfer         = "transfer"
	OpListTransactions = "list_transactions"
)
