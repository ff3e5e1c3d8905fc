package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_WrapKeepsIdentity(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := ErrContainerNotFound.Wrap(cause)

	assert.True(t, Is(err, ErrContainerNotFound))
	assert.True(t, Is(err, cause))
	assert.False(t, Is(err, ErrOwnerNotFound))
	assert.Equal(t, "container not found: connection reset", err.Error())
	assert.Nil(t, ErrContainerNotFound.Err, "sentinel must not be mutated")
}

func TestDomainError_Withf(t *testing.T) {
	err := ErrContainerNotActive.Withf("account %s is %s", "0001", "EXPIRED")

	assert.Equal(t, "account 0001 is EXPIRED", err.Error())
	assert.True(t, Is(err, ErrContainerNotActive))
	assert.Equal(t, "container is not active", ErrContainerNotActive.Message)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", ErrInvalidAmount, KindValidation},
		{"wrapped through fmt", fmt.Errorf("ctx: %w", ErrInsufficientFunds), KindInsufficientFunds},
		{"limit", ErrBalanceFloor, KindLimitExceeded},
		{"credentials", ErrInvalidCredentials, KindUnauthorized},
		{"disabled", ErrUserDisabled, KindForbidden},
		{"foreign", stderrors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestAsDomain(t *testing.T) {
	assert.Nil(t, AsDomain(nil))

	de := AsDomain(stderrors.New("disk full"))
	assert.Equal(t, KindInternal, de.Kind)
	assert.Equal(t, "INTERNAL", de.Code)

	assert.Same(t, ErrSelfTransfer, AsDomain(ErrSelfTransfer))
}
