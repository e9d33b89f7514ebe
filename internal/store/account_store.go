package store

import (
	"context"
	"database/sql"
	"errors"

	"egabank/internal/ledger"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, account ledger.Account) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, number, kind, balance, overdraft_limit, interest_rate, client_id, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, account.ID, account.Number, account.Kind, account.Balance, account.OverdraftLimit,
		account.InterestRate, account.ClientID, account.Active, account.CreatedAt)
	return err
}

func (s *AccountStore) GetByNumber(ctx context.Context, number string) (ledger.Account, error) {
	var row ledger.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, number, kind, balance, overdraft_limit, interest_rate, client_id, active, created_at
		FROM accounts
		WHERE number = $1
	`, number)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (ledger.Account, error) {
	var row ledger.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, number, kind, balance, overdraft_limit, interest_rate, client_id, active, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return row, nil
}

// GetByNumberForUpdate locks the account row for the rest of the
// transaction. Callers locking more than one account must lock in sorted
// number order to avoid deadlocks.
func (s *AccountStore) GetByNumberForUpdate(ctx context.Context, tx Getter, number string) (ledger.Account, error) {
	var row ledger.Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, number, kind, balance, overdraft_limit, interest_rate, client_id, active, created_at
		FROM accounts
		WHERE number = $1
		FOR UPDATE
	`, number)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE number = $1)
	`, number)
	return exists, err
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, accountID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	return err
}

func (s *AccountStore) SetActive(ctx context.Context, tx Execer, accountID string, active bool) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, accountID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

// Delete removes the account; transaction records go with it via the
// FK cascade. The zero-balance rule is enforced by the service before
// this is called.
func (s *AccountStore) Delete(ctx context.Context, tx Execer, accountID string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

func (s *AccountStore) ListByClient(ctx context.Context, clientID string) ([]ledger.Account, error) {
	var rows []ledger.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, number, kind, balance, overdraft_limit, interest_rate, client_id, active, created_at
		FROM accounts
		WHERE client_id = $1
		ORDER BY created_at
	`, clientID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
