package sqldb

import (
	"context"
	"database/sql"
)

type (
	// Executor is the interface of the subset of methods shared by [sql.DB] and [sql.Tx]
	Executor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
	}

	// Result is [sql.Result]
	Result = sql.Result

	// Rows is the interface boundary of [sql.Rows]
	//
	// NextResultSet advances past any rows remaining in the current result
	// set. It reports false when the statement produced no further result
	// sets.
	Rows interface {
		Columns() ([]string, error)
		Next() bool
		NextResultSet() bool
		Scan(dest ...interface{}) error
		Err() error
		Close() error
	}
)

type (
	// SQLDB implements Executor for [sql.DB]
	SQLDB struct {
		inner *sql.DB
	}
)

func NewSQLDB(db *sql.DB) *SQLDB {
	return &SQLDB{
		inner: db,
	}
}

func (s *SQLDB) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return s.inner.ExecContext(ctx, query, args...)
}

func (s *SQLDB) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := s.inner.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
