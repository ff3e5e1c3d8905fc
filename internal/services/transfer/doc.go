/*
Package transfer moves money between two containers.

A container is either a 20-digit account or a 16-digit card; a card draws on
the balance of the account it belongs to. Both sides of a transfer must be of
the same kind.

The synchronous path runs in one store transaction:

	vt, err := validator.Validate(ctx, tx, src, dst, amount) // reads only
	err = mutator.Apply(ctx, tx, vt)                          // locks, re-checks, debits, credits
	entry, err := writer.Record(ctx, tx, rec)                 // COMPLETED

In deferred mode the mutation is skipped and the entry is recorded PENDING;
the settlement engine applies it later with the same Validator and Mutator.

Error Handling:

Every error returned by Service is an *errors.DomainError. Validation,
NotFound, State, InsufficientFunds and LimitExceeded come from the checks;
persistence failures and timeouts are Internal.

Configuration:

	cfg := transfer.Config{
	    Mode:              transfer.ModeSync,
	    ContainerMode:     models.ContainerModeAny,
	    AllowSelfTransfer: false,
	    Limits:            models.DefaultLimitPolicy(),
	    OperationTimeout:  10 * time.Second,
	}
*/
package transfer
