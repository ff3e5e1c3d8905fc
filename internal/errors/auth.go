package errors

var (
	ErrInvalidCredentials = &DomainError{
		Kind:    KindUnauthorized,
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid username or password",
	}
	ErrUserDisabled = &DomainError{
		Kind:    KindForbidden,
		Code:    "USER_DISABLED",
		Message: "user has been disabled",
	}
	ErrUserNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrDuplicateUser = &DomainError{
		Kind:    KindState,
		Code:    "DUPLICATE_USER",
		Message: "a user with this username already exists",
	}
	ErrPasswordReused = &DomainError{
		Kind:    KindValidation,
		Code:    "PASSWORD_REUSED",
		Message: "new password must differ from the old one",
	}
)
