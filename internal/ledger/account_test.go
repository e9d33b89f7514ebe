package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	account := Account{Kind: KindSavings, Balance: 1000}
	for _, amount := range []int64{0, -1, -500} {
		if err := account.Credit(amount); err != ErrInvalidAmount {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if account.Balance != 1000 {
		t.Fatalf("balance mutated on failed credit: %d", account.Balance)
	}
}

func TestDebitSavingsFloorIsZero(t *testing.T) {
	account := Account{Kind: KindSavings, Balance: 5000}
	if err := account.Debit(5000); err != nil {
		t.Fatalf("debit to zero should succeed: %v", err)
	}
	if err := account.Debit(1); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if account.Balance != 0 {
		t.Fatalf("balance mutated on failed debit: %d", account.Balance)
	}
}

func TestDebitCurrentAllowsOverdraft(t *testing.T) {
	account := Account{Kind: KindCurrent, Balance: 10000, OverdraftLimit: 10000}
	if err := account.Debit(15000); err != nil {
		t.Fatalf("overdraft within limit should succeed: %v", err)
	}
	if account.Balance != -5000 {
		t.Fatalf("expected balance -5000, got %d", account.Balance)
	}
	if err := account.Debit(6000); err != ErrInsufficientFunds {
		t.Fatalf("expected ErrInsufficientFunds past the limit, got %v", err)
	}
	if account.Balance != -5000 {
		t.Fatalf("balance mutated on failed debit: %d", account.Balance)
	}
}

func TestDepositThenWithdrawRestoresBalance(t *testing.T) {
	account := Account{Kind: KindCurrent, Balance: 3210, OverdraftLimit: 0}
	if err := account.Credit(1234); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := account.Debit(1234); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if account.Balance != 3210 {
		t.Fatalf("expected balance 3210, got %d", account.Balance)
	}
}

func TestInterestDue(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		rate    string
		want    int64
	}{
		{"standard rate", 100000, "2.5", 2500},
		{"rounds half even down", 100, "2.5", 2}, // 2.5 cents -> 2
		{"rounds half even up", 300, "2.5", 8},   // 7.5 cents -> 8
		{"zero balance", 0, "2.5", 0},
		{"rounds to zero", 10, "2.5", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rate, err := decimal.NewFromString(tc.rate)
			if err != nil {
				t.Fatalf("parse rate: %v", err)
			}
			account := Account{Kind: KindSavings, Balance: tc.balance, InterestRate: rate}
			due, err := account.InterestDue()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if due != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, due)
			}
		})
	}
}

func TestInterestDueRejectsCurrentAccount(t *testing.T) {
	account := Account{Kind: KindCurrent, Balance: 100000}
	if _, err := account.InterestDue(); err != ErrNotSavings {
		t.Fatalf("expected ErrNotSavings, got %v", err)
	}
}
