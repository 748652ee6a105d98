package ledger

import (
	"errors"
)

var (
	// ErrInsufficientBalance is returned when a holder's active balance
	// cannot cover the amount to move.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when the spender's remaining
	// allowance on (owner, class, nonce) cannot cover the amount.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrUnauthorizedIssuer is returned when the operator of an issuer-only
	// operation is not allowed to manage the class.
	ErrUnauthorizedIssuer = errors.New("operator is not an issuer of the class")

	ErrLengthMismatch = errors.New("batch arguments length mismatch")

	ErrNegativeAmount = errors.New("negative amount")

	// ErrUnknownPosition is returned by registration-aware paths when the
	// class or nonce was never registered.
	ErrUnknownPosition = errors.New("unknown class or nonce")

	ErrClassExists = errors.New("class already registered")

	ErrNonceExists = errors.New("nonce already registered")
)
