package store

import (
	"context"
	"time"

	"egabank/internal/ledger"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// Insert appends one record and returns it with the DB-assigned seq.
// Records are append-only: there is no update or single-row delete.
func (s *TransactionStore) Insert(ctx context.Context, tx Getter, record ledger.Transaction) (ledger.Transaction, error) {
	err := tx.GetContext(ctx, &record.Seq, `
		INSERT INTO transactions (id, account_id, kind, amount, occurred_at, description, counterparty_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`, record.ID, record.AccountID, record.Kind, record.Amount,
		record.OccurredAt, record.Description, record.CounterpartyNumber)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return record, nil
}

// ListByAccountAndRange returns records whose timestamps fall in
// [from, to], most recent first; equal timestamps keep insertion order.
func (s *TransactionStore) ListByAccountAndRange(ctx context.Context, accountID string, from, to time.Time) ([]ledger.Transaction, error) {
	var rows []ledger.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, kind, amount, occurred_at, description, counterparty_number, seq
		FROM transactions
		WHERE account_id = $1 AND occurred_at BETWEEN $2 AND $3
		ORDER BY occurred_at DESC, seq ASC
	`, accountID, from, to)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) ListByAccount(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	var rows []ledger.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, kind, amount, occurred_at, description, counterparty_number, seq
		FROM transactions
		WHERE account_id = $1
		ORDER BY occurred_at DESC, seq ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
