package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"egabank/internal/db"
	"egabank/internal/iban"
	"egabank/internal/ledger"
	"egabank/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownClient    = errors.New("client does not exist")
	ErrInvalidKind      = errors.New("unknown account kind")
	ErrInvalidOverdraft = errors.New("overdraft limit must not be negative")
	ErrInvalidRate      = errors.New("interest rate must not be negative")
	ErrInvalidNumber    = errors.New("account number fails checksum validation")
	ErrNumberInUse      = errors.New("account number already in use")
)

// maxNumberAttempts bounds regeneration when a candidate number collides
// with an existing account.
const maxNumberAttempts = 5

type AccountService struct {
	txRunner  db.TxRunner
	accounts  AccountLifecycleStore
	clients   ClientStore
	audit     AuditStore
	generator NumberGenerator
	now       func() time.Time
}

type AccountLifecycleStore interface {
	Create(ctx context.Context, tx store.Execer, account ledger.Account) error
	GetByNumber(ctx context.Context, number string) (ledger.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx store.Getter, number string) (ledger.Account, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	SetActive(ctx context.Context, tx store.Execer, accountID string, active bool) error
	Delete(ctx context.Context, tx store.Execer, accountID string) error
	ListByClient(ctx context.Context, clientID string) ([]ledger.Account, error)
}

type ClientStore interface {
	GetByID(ctx context.Context, clientID string) (store.Client, error)
}

type NumberGenerator interface {
	Next() string
}

func NewAccountService(txRunner db.TxRunner, accounts AccountLifecycleStore, clients ClientStore, audit AuditStore, generator NumberGenerator) *AccountService {
	return &AccountService{
		txRunner:  txRunner,
		accounts:  accounts,
		clients:   clients,
		audit:     audit,
		generator: generator,
		now:       time.Now,
	}
}

type CreateAccountRequest struct {
	ActorID             string
	ClientID            string
	Kind                ledger.Kind
	Number              string // optional; generated when empty
	OverdraftLimitMinor int64
	InterestRate        *decimal.Decimal
}

// CreateAccount opens a zero-balance account. A supplied number must pass
// the checksum and be unused; an absent number is generated and
// re-checked against the repository, regenerating on collision up to
// maxNumberAttempts.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (ledger.Account, error) {
	account := ledger.Account{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		ClientID:  req.ClientID,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	switch req.Kind {
	case ledger.KindCurrent:
		if req.OverdraftLimitMinor < 0 {
			return ledger.Account{}, ErrInvalidOverdraft
		}
		account.OverdraftLimit = req.OverdraftLimitMinor
		account.InterestRate = decimal.Zero
	case ledger.KindSavings:
		rate := ledger.DefaultInterestRate
		if req.InterestRate != nil {
			rate = *req.InterestRate
		}
		if rate.IsNegative() {
			return ledger.Account{}, ErrInvalidRate
		}
		account.InterestRate = rate
	default:
		return ledger.Account{}, ErrInvalidKind
	}
	if _, err := s.clients.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			return ledger.Account{}, ErrUnknownClient
		}
		return ledger.Account{}, err
	}
	number, err := s.resolveNumber(ctx, req.Number)
	if err != nil {
		return ledger.Account{}, err
	}
	account.Number = number

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"number": account.Number,
			"kind":   string(account.Kind),
		})
		return s.audit.Log(ctx, tx, req.ActorID, "create_account", "account", account.ID, string(data))
	})
	if err != nil {
		// The number can be claimed between the ExistsByNumber check and
		// the insert; the unique index is the authority.
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if req.Number != "" {
				return ledger.Account{}, ErrNumberInUse
			}
			return ledger.Account{}, ledger.ErrNumberGenerationFailed
		}
		return ledger.Account{}, err
	}
	return account, nil
}

func (s *AccountService) resolveNumber(ctx context.Context, supplied string) (string, error) {
	if supplied != "" {
		if !iban.Valid(supplied) {
			return "", ErrInvalidNumber
		}
		exists, err := s.accounts.ExistsByNumber(ctx, supplied)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrNumberInUse
		}
		return supplied, nil
	}
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		candidate := s.generator.Next()
		exists, err := s.accounts.ExistsByNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ledger.ErrNumberGenerationFailed
}

func (s *AccountService) GetByNumber(ctx context.Context, number string) (ledger.Account, error) {
	return s.accounts.GetByNumber(ctx, number)
}

func (s *AccountService) ListByClient(ctx context.Context, clientID string) ([]ledger.Account, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			return nil, ErrUnknownClient
		}
		return nil, err
	}
	return s.accounts.ListByClient(ctx, clientID)
}

// SetActive deactivates or reactivates an account. A deactivated account
// rejects monetary operations but its history stays readable.
func (s *AccountService) SetActive(ctx context.Context, actorID, number string, active bool) error {
	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.SetActive(ctx, tx, account.ID, active); err != nil {
			return err
		}
		action := "deactivate_account"
		if active {
			action = "activate_account"
		}
		return s.audit.Log(ctx, tx, actorID, action, "account", account.ID, "{}")
	})
}

// Delete removes an account and, through the cascade, its transaction
// records. Blocked while any balance (positive or overdrawn) remains.
func (s *AccountService) Delete(ctx context.Context, actorID, number string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetByNumberForUpdate(ctx, tx, number)
		if err != nil {
			return err
		}
		if account.Balance != 0 {
			return ledger.ErrDeletionBlocked
		}
		if err := s.accounts.Delete(ctx, tx, account.ID); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, actorID, "delete_account", "account", account.ID, "{}")
	})
}
