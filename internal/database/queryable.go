package database

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// PGX содержит основные операции для работы с базой данных.
type PGX interface {
	Queryable
	BeginTx(ctx context.Context, txOptions *pgx.TxOptions) (Tx, error)
}

// Tx - транзакция
type Tx interface {
	Queryable
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Queryable is implemented by both the pool and a transaction, so every
// repository method can run inside or outside of one.
type Queryable interface {
	Exec(ctx context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error)
	Get(ctx context.Context, dst interface{}, sqlizer sq.Sqlizer) error
	Select(ctx context.Context, dst interface{}, sqlizer sq.Sqlizer) error
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}
