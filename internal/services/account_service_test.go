package services

import (
	"context"
	"testing"

	"egabank/internal/ledger"
	"egabank/internal/store"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type stubLifecycleStore struct {
	createFn func(ctx context.Context, tx store.Execer, account ledger.Account) error
	getFn    func(ctx context.Context, number string) (ledger.Account, error)
	lockFn   func(ctx context.Context, tx store.Getter, number string) (ledger.Account, error)
	existsFn func(ctx context.Context, number string) (bool, error)
	activeFn func(ctx context.Context, tx store.Execer, accountID string, active bool) error
	deleteFn func(ctx context.Context, tx store.Execer, accountID string) error
	listFn   func(ctx context.Context, clientID string) ([]ledger.Account, error)
}

func (s stubLifecycleStore) Create(ctx context.Context, tx store.Execer, account ledger.Account) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, account)
}

func (s stubLifecycleStore) GetByNumber(ctx context.Context, number string) (ledger.Account, error) {
	if s.getFn == nil {
		return ledger.Account{}, nil
	}
	return s.getFn(ctx, number)
}

func (s stubLifecycleStore) GetByNumberForUpdate(ctx context.Context, tx store.Getter, number string) (ledger.Account, error) {
	return s.lockFn(ctx, tx, number)
}

func (s stubLifecycleStore) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	if s.existsFn == nil {
		return false, nil
	}
	return s.existsFn(ctx, number)
}

func (s stubLifecycleStore) SetActive(ctx context.Context, tx store.Execer, accountID string, active bool) error {
	if s.activeFn == nil {
		return nil
	}
	return s.activeFn(ctx, tx, accountID, active)
}

func (s stubLifecycleStore) Delete(ctx context.Context, tx store.Execer, accountID string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, tx, accountID)
}

func (s stubLifecycleStore) ListByClient(ctx context.Context, clientID string) ([]ledger.Account, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, clientID)
}

type stubClientStore struct {
	getFn func(ctx context.Context, clientID string) (store.Client, error)
}

func (s stubClientStore) GetByID(ctx context.Context, clientID string) (store.Client, error) {
	if s.getFn == nil {
		return store.Client{ID: clientID}, nil
	}
	return s.getFn(ctx, clientID)
}

type sequenceGenerator struct {
	numbers []string
	calls   int
}

func (g *sequenceGenerator) Next() string {
	number := g.numbers[g.calls%len(g.numbers)]
	g.calls++
	return number
}

func TestCreateAccountGeneratesNumberAndRetriesOnCollision(t *testing.T) {
	taken := map[string]bool{"FR76TAKEN": true}
	var created ledger.Account
	service := NewAccountService(fakeTxRunner{}, stubLifecycleStore{
		createFn: func(_ context.Context, _ store.Execer, account ledger.Account) error {
			created = account
			return nil
		},
		existsFn: func(_ context.Context, number string) (bool, error) {
			return taken[number], nil
		},
	}, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"FR76TAKEN", "FR76FRESH"}})

	account, err := service.CreateAccount(context.Background(), CreateAccountRequest{
		ActorID:  "actor",
		ClientID: "client-1",
		Kind:     ledger.KindSavings,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Number != "FR76FRESH" {
		t.Fatalf("expected retry to pick fresh number, got %s", account.Number)
	}
	if created.Balance != 0 {
		t.Fatalf("new account must open with zero balance, got %d", created.Balance)
	}
	if !created.Active {
		t.Fatal("new account must start active")
	}
	if !created.InterestRate.Equal(ledger.DefaultInterestRate) {
		t.Fatalf("expected default interest rate, got %s", created.InterestRate)
	}
}

func TestCreateAccountGenerationExhausted(t *testing.T) {
	service := NewAccountService(fakeTxRunner{}, stubLifecycleStore{
		existsFn: func(context.Context, string) (bool, error) { return true, nil },
	}, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"FR76TAKEN"}})

	_, err := service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1",
		Kind:     ledger.KindCurrent,
	})
	if err != ledger.ErrNumberGenerationFailed {
		t.Fatalf("expected ErrNumberGenerationFailed, got %v", err)
	}
}

func TestCreateAccountSuppliedNumberChecks(t *testing.T) {
	service := NewAccountService(fakeTxRunner{}, stubLifecycleStore{
		existsFn: func(_ context.Context, number string) (bool, error) {
			return number == "GB82WEST12345698765432", nil
		},
	}, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"unused"}})

	_, err := service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1", Kind: ledger.KindCurrent, Number: "NOT-AN-IBAN",
	})
	if err != ErrInvalidNumber {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}

	_, err = service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1", Kind: ledger.KindCurrent, Number: "GB82WEST12345698765432",
	})
	if err != ErrNumberInUse {
		t.Fatalf("expected ErrNumberInUse, got %v", err)
	}
}

func TestCreateAccountInsertRaceMapsUniqueViolation(t *testing.T) {
	// ExistsByNumber says free, the insert then hits the unique index.
	collide := stubLifecycleStore{
		existsFn: func(context.Context, string) (bool, error) { return false, nil },
		createFn: func(context.Context, store.Execer, ledger.Account) error {
			return &pq.Error{Code: "23505", Constraint: "accounts_number_key"}
		},
	}

	service := NewAccountService(fakeTxRunner{}, collide, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"FR76FRESH"}})
	_, err := service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1", Kind: ledger.KindCurrent, Number: "GB82WEST12345698765432",
	})
	if err != ErrNumberInUse {
		t.Fatalf("supplied number: expected ErrNumberInUse, got %v", err)
	}

	service = NewAccountService(fakeTxRunner{}, collide, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"FR76FRESH"}})
	_, err = service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1", Kind: ledger.KindCurrent,
	})
	if err != ledger.ErrNumberGenerationFailed {
		t.Fatalf("generated number: expected ErrNumberGenerationFailed, got %v", err)
	}
}

func TestCreateAccountUnknownClient(t *testing.T) {
	service := NewAccountService(fakeTxRunner{}, stubLifecycleStore{}, stubClientStore{
		getFn: func(context.Context, string) (store.Client, error) {
			return store.Client{}, store.ErrClientNotFound
		},
	}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"FR76FRESH"}})

	_, err := service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "ghost", Kind: ledger.KindCurrent,
	})
	if err != ErrUnknownClient {
		t.Fatalf("expected ErrUnknownClient, got %v", err)
	}
}

func TestCreateAccountRejectsNegativeParameters(t *testing.T) {
	service := NewAccountService(fakeTxRunner{}, stubLifecycleStore{}, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"FR76FRESH"}})

	_, err := service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1", Kind: ledger.KindCurrent, OverdraftLimitMinor: -1,
	})
	if err != ErrInvalidOverdraft {
		t.Fatalf("expected ErrInvalidOverdraft, got %v", err)
	}

	negative := decimal.NewFromFloat(-0.5)
	_, err = service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1", Kind: ledger.KindSavings, InterestRate: &negative,
	})
	if err != ErrInvalidRate {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}

	_, err = service.CreateAccount(context.Background(), CreateAccountRequest{
		ClientID: "client-1", Kind: ledger.Kind("premium"),
	})
	if err != ErrInvalidKind {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestDeleteBlockedWhileBalanceRemains(t *testing.T) {
	deleted := false
	service := NewAccountService(fakeTxRunner{}, stubLifecycleStore{
		lockFn: func(_ context.Context, _ store.Getter, number string) (ledger.Account, error) {
			return ledger.Account{ID: "acc-1", Number: number, Balance: -100}, nil
		},
		deleteFn: func(context.Context, store.Execer, string) error {
			deleted = true
			return nil
		},
	}, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"x"}})

	err := service.Delete(context.Background(), "actor", "FR76A")
	if err != ledger.ErrDeletionBlocked {
		t.Fatalf("expected ErrDeletionBlocked, got %v", err)
	}
	if deleted {
		t.Fatal("delete must not run while balance is non-zero")
	}
}

func TestDeleteZeroBalance(t *testing.T) {
	deleted := false
	service := NewAccountService(fakeTxRunner{}, stubLifecycleStore{
		lockFn: func(_ context.Context, _ store.Getter, number string) (ledger.Account, error) {
			return ledger.Account{ID: "acc-1", Number: number, Balance: 0}, nil
		},
		deleteFn: func(_ context.Context, _ store.Execer, accountID string) error {
			if accountID != "acc-1" {
				t.Fatalf("unexpected account id: %s", accountID)
			}
			deleted = true
			return nil
		},
	}, stubClientStore{}, &stubAuditStore{}, &sequenceGenerator{numbers: []string{"x"}})

	if err := service.Delete(context.Background(), "actor", "FR76A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Fatal("expected delete to run")
	}
}
