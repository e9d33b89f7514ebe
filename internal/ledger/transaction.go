package ledger

import "time"

type TransactionKind string

const (
	TxDeposit     TransactionKind = "deposit"
	TxWithdrawal  TransactionKind = "withdrawal"
	TxTransferOut TransactionKind = "transfer_out"
	TxTransferIn  TransactionKind = "transfer_in"
	TxInterest    TransactionKind = "interest"
)

// MaxDescriptionLen caps the free-text description on a record.
const MaxDescriptionLen = 255

// Transaction is one immutable movement on an account. Seq is assigned by
// the store at insert time and breaks timestamp ties in history order.
type Transaction struct {
	ID                 string          `db:"id"`
	AccountID          string          `db:"account_id"`
	Kind               TransactionKind `db:"kind"`
	Amount             int64           `db:"amount"`
	OccurredAt         time.Time       `db:"occurred_at"`
	Description        string          `db:"description"`
	CounterpartyNumber *string         `db:"counterparty_number"`
	Seq                int64           `db:"seq"`
}
