// Package ledger holds the account domain model and the balance rules.
// Amounts are int64 minor units (cents); every mutation goes through
// Credit/Debit so the floor invariant can never be bypassed.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindCurrent Kind = "current"
	KindSavings Kind = "savings"
)

// DefaultInterestRate is the percentage applied to new savings accounts
// when none is supplied.
var DefaultInterestRate = decimal.NewFromFloat(2.5)

type Account struct {
	ID             string          `db:"id"`
	Number         string          `db:"number"`
	Kind           Kind            `db:"kind"`
	Balance        int64           `db:"balance"`
	OverdraftLimit int64           `db:"overdraft_limit"`
	InterestRate   decimal.Decimal `db:"interest_rate"`
	ClientID       string          `db:"client_id"`
	Active         bool            `db:"active"`
	CreatedAt      time.Time       `db:"created_at"`
}

// Floor is the minimum balance the account may reach: zero for savings,
// the negated overdraft limit for current accounts.
func (a *Account) Floor() int64 {
	if a.Kind == KindCurrent {
		return -a.OverdraftLimit
	}
	return 0
}

func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	a.Balance += amount
	return nil
}

// Debit checks the floor invariant and applies the mutation as one step;
// on error the balance is untouched.
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance-amount < a.Floor() {
		return ErrInsufficientFunds
	}
	a.Balance -= amount
	return nil
}

// InterestDue computes balance * rate / 100 rounded half-even to minor
// units. Savings accounts only.
func (a *Account) InterestDue() (int64, error) {
	if a.Kind != KindSavings {
		return 0, ErrNotSavings
	}
	due := decimal.NewFromInt(a.Balance).
		Mul(a.InterestRate).
		Div(decimal.NewFromInt(100)).
		RoundBank(0)
	return due.IntPart(), nil
}
