package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"egabank/internal/ledger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// fakeDriver backs an in-memory *sqlx.DB whose transactions count commits
// and rollbacks, and whose first failCommits commit calls fail with a
// Postgres error of failCode.
type fakeDriver struct {
	commits     int64
	rollbacks   int64
	commitCalls int64
	failCommits int64
	failCode    string
}

func (d *fakeDriver) Open(name string) (driver.Conn, error) { return &fakeConn{d: d}, nil }

type fakeConn struct {
	d *fakeDriver
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) { return fakeStmt{}, nil }
func (c *fakeConn) Close() error                              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)                 { return fakeTx{d: c.d}, nil }

func (c *fakeConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return fakeTx{d: c.d}, nil
}

type fakeTx struct {
	d *fakeDriver
}

func (t fakeTx) Commit() error {
	call := atomic.AddInt64(&t.d.commitCalls, 1)
	if call <= t.d.failCommits {
		return &pq.Error{Code: pq.ErrorCode(t.d.failCode)}
	}
	atomic.AddInt64(&t.d.commits, 1)
	return nil
}

func (t fakeTx) Rollback() error {
	atomic.AddInt64(&t.d.rollbacks, 1)
	return nil
}

type fakeStmt struct{}

func (fakeStmt) Close() error                                    { return nil }
func (fakeStmt) NumInput() int                                   { return -1 }
func (fakeStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (fakeStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

var driverCounter uint64

func openFakeDB(t *testing.T, d *fakeDriver) *sqlx.DB {
	t.Helper()
	name := fmt.Sprintf("fake-%d", atomic.AddUint64(&driverCounter, 1))
	sql.Register(name, d)
	sqlDB, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlx.NewDb(sqlDB, name)
}

func TestWithTxCommits(t *testing.T) {
	d := &fakeDriver{}
	database := openFakeDB(t, d)
	if err := WithTx(context.Background(), database, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.commits != 1 || d.rollbacks != 0 {
		t.Fatalf("expected commit=1 rollback=0, got %d/%d", d.commits, d.rollbacks)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	d := &fakeDriver{}
	database := openFakeDB(t, d)
	boom := errors.New("boom")
	if err := WithTx(context.Background(), database, func(*sqlx.Tx) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if d.rollbacks != 1 || d.commits != 0 {
		t.Fatalf("expected rollback=1 commit=0, got %d/%d", d.rollbacks, d.commits)
	}
}

func TestWithTxRetriesSerializationFailure(t *testing.T) {
	d := &fakeDriver{failCommits: 1, failCode: "40001"}
	database := openFakeDB(t, d)
	if err := WithTx(context.Background(), database, func(*sqlx.Tx) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.commitCalls != 2 {
		t.Fatalf("expected 2 commit attempts, got %d", d.commitCalls)
	}
}

func TestWithTxExhaustionSurfacesConcurrentModification(t *testing.T) {
	d := &fakeDriver{failCommits: 10, failCode: "40P01"}
	database := openFakeDB(t, d)
	err := WithTx(context.Background(), database, func(*sqlx.Tx) error { return nil })
	if !errors.Is(err, ledger.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}
	if d.commitCalls != 5 {
		t.Fatalf("expected 5 commit attempts, got %d", d.commitCalls)
	}
}

func TestIsSerializationError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&pq.Error{Code: "40001"}, true},
		{&pq.Error{Code: "40P01"}, true},
		{&pq.Error{Code: "23505"}, false},
		{errors.New("plain"), false},
		{fmt.Errorf("wrapped: %w", &pq.Error{Code: "40001"}), true},
	}
	for _, tc := range cases {
		if got := isSerializationError(tc.err); got != tc.want {
			t.Fatalf("isSerializationError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
