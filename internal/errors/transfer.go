package errors

var (
	ErrInternal = &DomainError{
		Kind:    KindInternal,
		Code:    "INTERNAL",
		Message: "internal error",
	}
	ErrTimeout = &DomainError{
		Kind:    KindInternal,
		Code:    "OPERATION_TIMEOUT",
		Message: "operation timed out",
	}

	ErrInvalidAmount = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_AMOUNT",
		Message: "amount must be greater than zero",
	}
	ErrInvalidIdentifier = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_IDENTIFIER",
		Message: "identifier must be a 20-digit account or 16-digit card number",
	}
	ErrMixedContainerKinds = &DomainError{
		Kind:    KindValidation,
		Code:    "MIXED_CONTAINER_KINDS",
		Message: "source and destination must both be accounts or both be cards",
	}
	ErrContainerKindNotAllowed = &DomainError{
		Kind:    KindValidation,
		Code:    "CONTAINER_KIND_NOT_ALLOWED",
		Message: "container kind is not enabled on this instance",
	}
	ErrSameContainer = &DomainError{
		Kind:    KindValidation,
		Code:    "SAME_CONTAINER",
		Message: "source and destination are the same container",
	}
	ErrSelfTransfer = &DomainError{
		Kind:    KindValidation,
		Code:    "SELF_TRANSFER",
		Message: "source and destination draw on the same balance",
	}

	ErrContainerNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "CONTAINER_NOT_FOUND",
		Message: "container not found",
	}
	ErrOwnerNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "OWNER_NOT_FOUND",
		Message: "customer not found",
	}
	ErrEntryNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}

	ErrContainerNotActive = &DomainError{
		Kind:    KindState,
		Code:    "CONTAINER_NOT_ACTIVE",
		Message: "container is not active",
	}
	ErrEntryNotPending = &DomainError{
		Kind:    KindState,
		Code:    "TRANSACTION_NOT_PENDING",
		Message: "transaction is already settled",
	}
	ErrSettlementInProgress = &DomainError{
		Kind:    KindState,
		Code:    "SETTLEMENT_IN_PROGRESS",
		Message: "another settlement run is in progress",
	}

	ErrInsufficientFunds = &DomainError{
		Kind:    KindInsufficientFunds,
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient funds",
	}

	ErrBalanceFloor = &DomainError{
		Kind:    KindLimitExceeded,
		Code:    "MIN_BALANCE_BREACHED",
		Message: "transfer would take the balance below the minimum acceptable balance",
	}
	ErrOwnerSuspected = &DomainError{
		Kind:    KindLimitExceeded,
		Code:    "OWNER_SUSPECTED",
		Message: "customer is flagged as suspected",
	}

	ErrIDAllocation = &DomainError{
		Kind:    KindInternal,
		Code:    "ID_ALLOCATION_FAILED",
		Message: "could not allocate a unique identifier",
	}
)
