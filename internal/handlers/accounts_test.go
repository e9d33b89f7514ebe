package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"egabank/internal/ledger"
	"egabank/internal/services"

	"github.com/shopspring/decimal"
)

func TestCreateAccountParsesOverdraft(t *testing.T) {
	var got services.CreateAccountRequest
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubClientStore{}, stubAccountService{
		createFn: func(_ context.Context, req services.CreateAccountRequest) (ledger.Account, error) {
			got = req
			return ledger.Account{
				ID:             "acc-1",
				Number:         "FR7612345678901234567890123",
				Kind:           ledger.KindCurrent,
				OverdraftLimit: req.OverdraftLimitMinor,
				ClientID:       req.ClientID,
				Active:         true,
				CreatedAt:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			}, nil
		},
	}, stubLedgerService{}, stubTransactionLister{})

	rr := serveAuthed(t, handler, http.MethodPost, "/accounts/", "user-1", `{"client_id":"client-1","kind":"current","overdraft_limit":"150.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.OverdraftLimitMinor != 15000 {
		t.Fatalf("expected 15000 minor units, got %d", got.OverdraftLimitMinor)
	}
	if got.ActorID != "user-1" {
		t.Fatalf("expected actor user-1, got %q", got.ActorID)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["overdraft_limit"] != "150.00" {
		t.Fatalf("expected formatted overdraft 150.00, got %v", payload["overdraft_limit"])
	}
}

func TestCreateAccountParsesInterestRate(t *testing.T) {
	var got services.CreateAccountRequest
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubClientStore{}, stubAccountService{
		createFn: func(_ context.Context, req services.CreateAccountRequest) (ledger.Account, error) {
			got = req
			return ledger.Account{
				Number:       "FR7612345678901234567890123",
				Kind:         ledger.KindSavings,
				InterestRate: *req.InterestRate,
				ClientID:     req.ClientID,
				Active:       true,
			}, nil
		},
	}, stubLedgerService{}, stubTransactionLister{})

	rr := serveAuthed(t, handler, http.MethodPost, "/accounts/", "user-1", `{"client_id":"client-1","kind":"savings","interest_rate":"3.75"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.InterestRate == nil || !got.InterestRate.Equal(decimal.NewFromFloat(3.75)) {
		t.Fatalf("unexpected rate: %v", got.InterestRate)
	}
}

func TestCreateAccountMapsNumberInUse(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubClientStore{}, stubAccountService{
		createFn: func(context.Context, services.CreateAccountRequest) (ledger.Account, error) {
			return ledger.Account{}, services.ErrNumberInUse
		},
	}, stubLedgerService{}, stubTransactionLister{})

	rr := serveAuthed(t, handler, http.MethodPost, "/accounts/", "user-1", `{"client_id":"client-1","kind":"current","number":"FR7612345678901234567890123"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestCreateAccountMapsUnknownClient(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubClientStore{}, stubAccountService{
		createFn: func(context.Context, services.CreateAccountRequest) (ledger.Account, error) {
			return ledger.Account{}, services.ErrUnknownClient
		},
	}, stubLedgerService{}, stubTransactionLister{})

	rr := serveAuthed(t, handler, http.MethodPost, "/accounts/", "user-1", `{"client_id":"nope","kind":"current"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubClientStore{}, stubAccountService{
		getByNumberFn: func(context.Context, string) (ledger.Account, error) {
			return ledger.Account{}, ledger.ErrAccountNotFound
		},
	}, stubLedgerService{}, stubTransactionLister{})

	rr := serveAuthed(t, handler, http.MethodGet, "/accounts/FR76MISSING", "user-1", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestDeleteAccountBlockedOnBalance(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubClientStore{}, stubAccountService{
		deleteFn: func(context.Context, string, string) error {
			return ledger.ErrDeletionBlocked
		},
	}, stubLedgerService{}, stubTransactionLister{})

	rr := serveAuthed(t, handler, http.MethodDelete, "/accounts/FR7612345678901234567890123", "user-1", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestDeactivateAccount(t *testing.T) {
	var gotNumber string
	var gotActive bool
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubClientStore{}, stubAccountService{
		setActiveFn: func(_ context.Context, _, number string, active bool) error {
			gotNumber, gotActive = number, active
			return nil
		},
	}, stubLedgerService{}, stubTransactionLister{})

	rr := serveAuthed(t, handler, http.MethodPut, "/accounts/FR7612345678901234567890123/deactivate", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotNumber != "FR7612345678901234567890123" || gotActive {
		t.Fatalf("unexpected call: number=%q active=%v", gotNumber, gotActive)
	}
}
