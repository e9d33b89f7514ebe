package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"egabank/internal/auth"
	"egabank/internal/config"
	"egabank/internal/ledger"
	"egabank/internal/services"
	"egabank/internal/store"
	"egabank/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubLedgerService struct {
	depositFn  func(ctx context.Context, req services.OperationRequest) (ledger.Transaction, error)
	withdrawFn func(ctx context.Context, req services.OperationRequest) (ledger.Transaction, error)
	transferFn func(ctx context.Context, req services.TransferRequest) (services.TransferResult, error)
	interestFn func(ctx context.Context, req services.AccrueInterestRequest) (ledger.Transaction, bool, error)
	historyFn  func(ctx context.Context, accountNumber string, from, to time.Time) ([]ledger.Transaction, error)
}

func (s stubLedgerService) Deposit(ctx context.Context, req services.OperationRequest) (ledger.Transaction, error) {
	if s.depositFn == nil {
		return ledger.Transaction{}, nil
	}
	return s.depositFn(ctx, req)
}

func (s stubLedgerService) Withdraw(ctx context.Context, req services.OperationRequest) (ledger.Transaction, error) {
	if s.withdrawFn == nil {
		return ledger.Transaction{}, nil
	}
	return s.withdrawFn(ctx, req)
}

func (s stubLedgerService) Transfer(ctx context.Context, req services.TransferRequest) (services.TransferResult, error) {
	if s.transferFn == nil {
		return services.TransferResult{}, nil
	}
	return s.transferFn(ctx, req)
}

func (s stubLedgerService) AccrueInterest(ctx context.Context, req services.AccrueInterestRequest) (ledger.Transaction, bool, error) {
	if s.interestFn == nil {
		return ledger.Transaction{}, false, nil
	}
	return s.interestFn(ctx, req)
}

func (s stubLedgerService) History(ctx context.Context, accountNumber string, from, to time.Time) ([]ledger.Transaction, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, accountNumber, from, to)
}

type stubAccountService struct {
	createFn       func(ctx context.Context, req services.CreateAccountRequest) (ledger.Account, error)
	getByNumberFn  func(ctx context.Context, number string) (ledger.Account, error)
	listByClientFn func(ctx context.Context, clientID string) ([]ledger.Account, error)
	setActiveFn    func(ctx context.Context, actorID, number string, active bool) error
	deleteFn       func(ctx context.Context, actorID, number string) error
}

func (s stubAccountService) CreateAccount(ctx context.Context, req services.CreateAccountRequest) (ledger.Account, error) {
	if s.createFn == nil {
		return ledger.Account{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubAccountService) GetByNumber(ctx context.Context, number string) (ledger.Account, error) {
	if s.getByNumberFn == nil {
		return ledger.Account{}, nil
	}
	return s.getByNumberFn(ctx, number)
}

func (s stubAccountService) ListByClient(ctx context.Context, clientID string) ([]ledger.Account, error) {
	if s.listByClientFn == nil {
		return nil, nil
	}
	return s.listByClientFn(ctx, clientID)
}

func (s stubAccountService) SetActive(ctx context.Context, actorID, number string, active bool) error {
	if s.setActiveFn == nil {
		return nil
	}
	return s.setActiveFn(ctx, actorID, number, active)
}

func (s stubAccountService) Delete(ctx context.Context, actorID, number string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, actorID, number)
}

type stubClientStore struct {
	createFn  func(ctx context.Context, tx store.Execer, client store.Client) error
	getByIDFn func(ctx context.Context, clientID string) (store.Client, error)
	listFn    func(ctx context.Context) ([]store.Client, error)
}

func (s stubClientStore) Create(ctx context.Context, tx store.Execer, client store.Client) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, client)
}

func (s stubClientStore) GetByID(ctx context.Context, clientID string) (store.Client, error) {
	if s.getByIDFn == nil {
		return store.Client{}, nil
	}
	return s.getByIDFn(ctx, clientID)
}

func (s stubClientStore) List(ctx context.Context) ([]store.Client, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (store.User, error)
	getByIDFn    func(ctx context.Context, userID string) (store.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	if s.getByEmailFn == nil {
		return store.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubTransactionLister struct {
	listFn func(ctx context.Context, accountID string) ([]ledger.Transaction, error)
}

func (s stubTransactionLister) ListByAccount(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, accountID)
}

type stubAuditLister struct {
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditLog, error)
}

func (s stubAuditLister) List(ctx context.Context, limit, offset int) ([]store.AuditLog, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

func newTestHandler(txRunner fakeTxRunner, users UserStore, clients ClientStore, accounts AccountService, ledgerSvc LedgerService, lister TransactionLister) *Handler {
	return newTestHandlerWithAudit(txRunner, users, clients, accounts, ledgerSvc, lister, stubAuditLister{})
}

func newTestHandlerWithAudit(txRunner fakeTxRunner, users UserStore, clients ClientStore, accounts AccountService, ledgerSvc LedgerService, lister TransactionLister, audit AuditLister) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	return New(txRunner, cfg, users, clients, accounts, ledgerSvc, lister, audit, websocket.NewHub())
}

// serveAuthed routes the request through the full router with a valid
// bearer token for userID, so URL params resolve as in production.
func serveAuthed(t *testing.T, handler *Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}
