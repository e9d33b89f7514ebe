package handlers

import (
	"context"
	"time"

	"egabank/internal/ledger"
	"egabank/internal/services"
	"egabank/internal/store"
)

type LedgerService interface {
	Deposit(ctx context.Context, req services.OperationRequest) (ledger.Transaction, error)
	Withdraw(ctx context.Context, req services.OperationRequest) (ledger.Transaction, error)
	Transfer(ctx context.Context, req services.TransferRequest) (services.TransferResult, error)
	AccrueInterest(ctx context.Context, req services.AccrueInterestRequest) (ledger.Transaction, bool, error)
	History(ctx context.Context, accountNumber string, from, to time.Time) ([]ledger.Transaction, error)
}

type AccountService interface {
	CreateAccount(ctx context.Context, req services.CreateAccountRequest) (ledger.Account, error)
	GetByNumber(ctx context.Context, number string) (ledger.Account, error)
	ListByClient(ctx context.Context, clientID string) ([]ledger.Account, error)
	SetActive(ctx context.Context, actorID, number string, active bool) error
	Delete(ctx context.Context, actorID, number string) error
}

type ClientStore interface {
	Create(ctx context.Context, tx store.Execer, client store.Client) error
	GetByID(ctx context.Context, clientID string) (store.Client, error)
	List(ctx context.Context) ([]store.Client, error)
}

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
}

type TransactionLister interface {
	ListByAccount(ctx context.Context, accountID string) ([]ledger.Transaction, error)
}

type AuditLister interface {
	List(ctx context.Context, limit, offset int) ([]store.AuditLog, error)
}
