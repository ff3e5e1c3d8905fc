package errors

var (
	ErrInvalidRequest = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_REQUEST",
		Message: "invalid request",
	}
	ErrInvalidStatusTransition = &DomainError{
		Kind:    KindState,
		Code:    "INVALID_STATUS_TRANSITION",
		Message: "status transition not allowed",
	}
	ErrDuplicateCustomer = &DomainError{
		Kind:    KindState,
		Code:    "DUPLICATE_CUSTOMER",
		Message: "a customer with this FIN, email or phone already exists",
	}
	ErrAccountLimitReached = &DomainError{
		Kind:    KindLimitExceeded,
		Code:    "ACCOUNT_LIMIT_REACHED",
		Message: "customer has reached the maximum number of accounts",
	}
	ErrCardLimitReached = &DomainError{
		Kind:    KindLimitExceeded,
		Code:    "CARD_LIMIT_REACHED",
		Message: "account has reached the maximum number of cards",
	}
)
