// Package dbtest provides an in-memory stand-in for database.PGX that records
// every statement instead of talking to postgres.
package dbtest

import (
	"context"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/SergeyKozhin/workspace-calendar/internal/database"
)

type Statement struct {
	SQL  string
	Args []interface{}
	// InTx is set for statements issued through a transaction.
	InTx bool
}

// DB records statements. GetFn, SelectFn and ExecFn, when set, decide what
// the matching call returns.
type DB struct {
	mu sync.Mutex

	Statements []Statement
	Begun      int
	Commits    int
	Rollbacks  int

	BeginErr  error
	CommitErr error

	GetFn    func(dst interface{}, sql string, args []interface{}) error
	SelectFn func(dst interface{}, sql string, args []interface{}) error
	ExecFn   func(sql string, args []interface{}) (pgconn.CommandTag, error)
}

var _ database.PGX = (*DB)(nil)

func New() *DB {
	return &DB{}
}

func (d *DB) SQL() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	res := make([]string, len(d.Statements))
	for i, s := range d.Statements {
		res[i] = s.SQL
	}
	return res
}

func (d *DB) record(sqlizer sq.Sqlizer, inTx bool) (string, []interface{}, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return "", nil, err
	}

	d.mu.Lock()
	d.Statements = append(d.Statements, Statement{SQL: query, Args: args, InTx: inTx})
	d.mu.Unlock()

	return query, args, nil
}

func (d *DB) exec(sqlizer sq.Sqlizer, inTx bool) (pgconn.CommandTag, error) {
	query, args, err := d.record(sqlizer, inTx)
	if err != nil {
		return nil, err
	}
	if d.ExecFn != nil {
		return d.ExecFn(query, args)
	}
	return pgconn.CommandTag("OK 1"), nil
}

func (d *DB) get(dst interface{}, sqlizer sq.Sqlizer, inTx bool) error {
	query, args, err := d.record(sqlizer, inTx)
	if err != nil {
		return err
	}
	if d.GetFn != nil {
		return d.GetFn(dst, query, args)
	}
	return pgx.ErrNoRows
}

func (d *DB) sel(dst interface{}, sqlizer sq.Sqlizer, inTx bool) error {
	query, args, err := d.record(sqlizer, inTx)
	if err != nil {
		return err
	}
	if d.SelectFn != nil {
		return d.SelectFn(dst, query, args)
	}
	return nil
}

func (d *DB) Exec(_ context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error) {
	return d.exec(sqlizer, false)
}

func (d *DB) Get(_ context.Context, dst interface{}, sqlizer sq.Sqlizer) error {
	return d.get(dst, sqlizer, false)
}

func (d *DB) Select(_ context.Context, dst interface{}, sqlizer sq.Sqlizer) error {
	return d.sel(dst, sqlizer, false)
}

func (d *DB) BeginTx(_ context.Context, _ *pgx.TxOptions) (database.Tx, error) {
	if d.BeginErr != nil {
		return nil, d.BeginErr
	}

	d.mu.Lock()
	d.Begun++
	d.mu.Unlock()

	return &tx{db: d}, nil
}

type tx struct {
	db   *DB
	done bool
}

func (t *tx) Exec(_ context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error) {
	return t.db.exec(sqlizer, true)
}

func (t *tx) Get(_ context.Context, dst interface{}, sqlizer sq.Sqlizer) error {
	return t.db.get(dst, sqlizer, true)
}

func (t *tx) Select(_ context.Context, dst interface{}, sqlizer sq.Sqlizer) error {
	return t.db.sel(dst, sqlizer, true)
}

func (t *tx) Commit(_ context.Context) error {
	if t.db.CommitErr != nil {
		return t.db.CommitErr
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if !t.done {
		t.done = true
		t.db.Commits++
	}
	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.Rollbacks++
	return nil
}
