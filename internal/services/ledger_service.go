package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"egabank/internal/db"
	"egabank/internal/ledger"
	"egabank/internal/money"
	"egabank/internal/store"
	"egabank/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrDescriptionTooLong = errors.New("description exceeds maximum length")

// LedgerService is the only path that mutates account balances. Every
// operation validates before mutating, and all writes for one operation
// share a single serializable transaction, so a failure at any point
// leaves no partial state.
type LedgerService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	audit        AuditStore
	hub          BalanceHub
	now          func() time.Time
}

type AccountStore interface {
	GetByNumber(ctx context.Context, number string) (ledger.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx store.Getter, number string) (ledger.Account, error)
	UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error
}

type TransactionStore interface {
	Insert(ctx context.Context, tx store.Getter, record ledger.Transaction) (ledger.Transaction, error)
	ListByAccountAndRange(ctx context.Context, accountID string, from, to time.Time) ([]ledger.Transaction, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(clientID string, update websocket.BalanceUpdate)
}

func NewLedgerService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, audit AuditStore, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		audit:        audit,
		hub:          hub,
		now:          time.Now,
	}
}

type OperationRequest struct {
	ActorID       string
	AccountNumber string
	AmountMinor   int64
	Description   string
}

func (s *LedgerService) Deposit(ctx context.Context, req OperationRequest) (ledger.Transaction, error) {
	if req.AmountMinor <= 0 {
		return ledger.Transaction{}, ledger.ErrInvalidAmount
	}
	if len(req.Description) > ledger.MaxDescriptionLen {
		return ledger.Transaction{}, ErrDescriptionTooLong
	}
	var record ledger.Transaction
	var account ledger.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		account, err = s.accounts.GetByNumberForUpdate(ctx, tx, req.AccountNumber)
		if err != nil {
			return err
		}
		if !account.Active {
			return ledger.ErrAccountInactive
		}
		if err := account.Credit(req.AmountMinor); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance); err != nil {
			return err
		}
		record, err = s.transactions.Insert(ctx, tx, ledger.Transaction{
			ID:          uuid.NewString(),
			AccountID:   account.ID,
			Kind:        ledger.TxDeposit,
			Amount:      req.AmountMinor,
			OccurredAt:  s.now().UTC(),
			Description: req.Description,
		})
		if err != nil {
			return err
		}
		return s.logOperation(ctx, tx, req.ActorID, "deposit", record)
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.broadcast(account)
	return record, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, req OperationRequest) (ledger.Transaction, error) {
	if req.AmountMinor <= 0 {
		return ledger.Transaction{}, ledger.ErrInvalidAmount
	}
	if len(req.Description) > ledger.MaxDescriptionLen {
		return ledger.Transaction{}, ErrDescriptionTooLong
	}
	var record ledger.Transaction
	var account ledger.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		account, err = s.accounts.GetByNumberForUpdate(ctx, tx, req.AccountNumber)
		if err != nil {
			return err
		}
		if !account.Active {
			return ledger.ErrAccountInactive
		}
		if err := account.Debit(req.AmountMinor); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance); err != nil {
			return err
		}
		record, err = s.transactions.Insert(ctx, tx, ledger.Transaction{
			ID:          uuid.NewString(),
			AccountID:   account.ID,
			Kind:        ledger.TxWithdrawal,
			Amount:      req.AmountMinor,
			OccurredAt:  s.now().UTC(),
			Description: req.Description,
		})
		if err != nil {
			return err
		}
		return s.logOperation(ctx, tx, req.ActorID, "withdraw", record)
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.broadcast(account)
	return record, nil
}

type TransferRequest struct {
	ActorID      string
	SourceNumber string
	DestNumber   string
	AmountMinor  int64
	Description  string
}

// TransferResult carries both legs of a committed transfer. The legs
// share one timestamp and were written in the same transaction.
type TransferResult struct {
	Outgoing ledger.Transaction
	Incoming ledger.Transaction
}

func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	if req.AmountMinor <= 0 {
		return TransferResult{}, ledger.ErrInvalidAmount
	}
	if req.SourceNumber == req.DestNumber {
		return TransferResult{}, ledger.ErrSameAccountTransfer
	}
	if len(req.Description) > ledger.MaxDescriptionLen {
		return TransferResult{}, ErrDescriptionTooLong
	}
	var result TransferResult
	var source, dest ledger.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		source, dest, err = s.lockAccountPair(ctx, tx, req.SourceNumber, req.DestNumber)
		if err != nil {
			return err
		}
		if !source.Active || !dest.Active {
			return ledger.ErrAccountInactive
		}
		if err := source.Debit(req.AmountMinor); err != nil {
			return err
		}
		if err := dest.Credit(req.AmountMinor); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, source.ID, source.Balance); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, dest.ID, dest.Balance); err != nil {
			return err
		}
		occurredAt := s.now().UTC()
		result.Outgoing, err = s.transactions.Insert(ctx, tx, ledger.Transaction{
			ID:                 uuid.NewString(),
			AccountID:          source.ID,
			Kind:               ledger.TxTransferOut,
			Amount:             req.AmountMinor,
			OccurredAt:         occurredAt,
			Description:        req.Description,
			CounterpartyNumber: &dest.Number,
		})
		if err != nil {
			return err
		}
		result.Incoming, err = s.transactions.Insert(ctx, tx, ledger.Transaction{
			ID:                 uuid.NewString(),
			AccountID:          dest.ID,
			Kind:               ledger.TxTransferIn,
			Amount:             req.AmountMinor,
			OccurredAt:         occurredAt,
			Description:        req.Description,
			CounterpartyNumber: &source.Number,
		})
		if err != nil {
			return err
		}
		return s.logOperation(ctx, tx, req.ActorID, "transfer", result.Outgoing)
	})
	if err != nil {
		return TransferResult{}, err
	}
	s.broadcast(source)
	s.broadcast(dest)
	return result, nil
}

type AccrueInterestRequest struct {
	ActorID       string
	AccountNumber string
}

// AccrueInterest credits the periodic interest on a savings account.
// When the interest rounds to zero it is a no-op and applied is false.
func (s *LedgerService) AccrueInterest(ctx context.Context, req AccrueInterestRequest) (ledger.Transaction, bool, error) {
	var record ledger.Transaction
	var applied bool
	var account ledger.Account
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		applied = false
		account, err = s.accounts.GetByNumberForUpdate(ctx, tx, req.AccountNumber)
		if err != nil {
			return err
		}
		if !account.Active {
			return ledger.ErrAccountInactive
		}
		due, err := account.InterestDue()
		if err != nil {
			return err
		}
		if due == 0 {
			return nil
		}
		if err := account.Credit(due); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, account.ID, account.Balance); err != nil {
			return err
		}
		record, err = s.transactions.Insert(ctx, tx, ledger.Transaction{
			ID:          uuid.NewString(),
			AccountID:   account.ID,
			Kind:        ledger.TxInterest,
			Amount:      due,
			OccurredAt:  s.now().UTC(),
			Description: "Interest credit",
		})
		if err != nil {
			return err
		}
		applied = true
		return s.logOperation(ctx, tx, req.ActorID, "accrue_interest", record)
	})
	if err != nil {
		return ledger.Transaction{}, false, err
	}
	if applied {
		s.broadcast(account)
	}
	return record, applied, nil
}

// History lists an account's records with timestamps in [from, to], most
// recent first. Inactive accounts keep their history readable.
func (s *LedgerService) History(ctx context.Context, accountNumber string, from, to time.Time) ([]ledger.Transaction, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return s.transactions.ListByAccountAndRange(ctx, account.ID, from, to)
}

// lockAccountPair locks both rows in sorted number order so two
// concurrent transfers over the same pair cannot deadlock.
func (s *LedgerService) lockAccountPair(ctx context.Context, tx store.Getter, sourceNumber, destNumber string) (ledger.Account, ledger.Account, error) {
	numbers := []string{sourceNumber, destNumber}
	sort.Strings(numbers)
	byNumber := make(map[string]ledger.Account, 2)
	for _, number := range numbers {
		account, err := s.accounts.GetByNumberForUpdate(ctx, tx, number)
		if err != nil {
			return ledger.Account{}, ledger.Account{}, err
		}
		byNumber[number] = account
	}
	return byNumber[sourceNumber], byNumber[destNumber], nil
}

func (s *LedgerService) logOperation(ctx context.Context, tx store.Execer, actorID, action string, record ledger.Transaction) error {
	data, _ := json.Marshal(map[string]string{
		"transaction_id": record.ID,
		"amount":         money.FormatMinor(record.Amount),
	})
	return s.audit.Log(ctx, tx, actorID, action, "transaction", record.ID, string(data))
}

func (s *LedgerService) broadcast(account ledger.Account) {
	s.hub.BroadcastBalance(account.ClientID, websocket.BalanceUpdate{
		AccountNumber: account.Number,
		Balance:       money.FormatMinor(account.Balance),
	})
}
