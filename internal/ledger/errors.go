package ledger

import "errors"

var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountInactive        = errors.New("account is inactive")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrSameAccountTransfer    = errors.New("cannot transfer to same account")
	ErrNotSavings             = errors.New("account does not accrue interest")
	ErrNumberGenerationFailed = errors.New("could not generate a unique account number")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDeletionBlocked        = errors.New("account balance must be zero before deletion")
)
