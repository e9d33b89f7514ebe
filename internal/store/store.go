// Package store is the persistence layer. Each store takes narrow
// Execer/Getter interfaces on its methods so the same code runs against
// the pool or inside a transaction handed down by the service layer.
package store

import (
	"context"
	"database/sql"
)

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is the slice of a live transaction the stores need.
type Tx interface {
	Execer
	Getter
}
