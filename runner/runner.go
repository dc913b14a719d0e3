package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"xorkevin.dev/kerrors"
	"xorkevin.dev/klog"
	"xorkevin.dev/sqlrun/runner/sqldb"
)

var (
	// ErrExec is returned when the database fails to execute a statement
	ErrExec errExec
	// ErrResults is returned when reading statement results fails
	ErrResults errResults
)

type (
	errExec    struct{}
	errResults struct{}
)

func (e errExec) Error() string {
	return "Failed executing statement"
}

func (e errResults) Error() string {
	return "Failed reading statement results"
}

type (
	// OutcomeKind discriminates the results a statement may produce
	OutcomeKind int

	// Outcome is one discrete result of executing a statement, either a
	// tabular result set or an affected row count
	Outcome struct {
		Kind     OutcomeKind
		Columns  []string
		Rows     [][]string
		Total    int
		Affected int64
	}

	Opts struct {
		RowLimit  int
		Delimiter string
	}

	Runner struct {
		log  *klog.LevelLogger
		db   sqldb.Executor
		opts Opts
	}
)

const (
	// KindTable is a tabular result set outcome
	KindTable OutcomeKind = iota
	// KindCount is an affected row count outcome
	KindCount
)

const (
	defaultRowLimit  = 5
	defaultDelimiter = ", "
)

func New(log klog.Logger, db sqldb.Executor, opts Opts) *Runner {
	if opts.RowLimit <= 0 {
		opts.RowLimit = defaultRowLimit
	}
	if opts.Delimiter == "" {
		opts.Delimiter = defaultDelimiter
	}
	return &Runner{
		log:  klog.NewLevelLogger(log),
		db:   db,
		opts: opts,
	}
}

// tabularKeywords are leading statement keywords that produce a tabular first
// outcome. Every other statement produces an affected row count.
var tabularKeywords = map[string]struct{}{
	"SELECT":   {},
	"SHOW":     {},
	"DESC":     {},
	"DESCRIBE": {},
	"EXPLAIN":  {},
	"WITH":     {},
	"TABLE":    {},
	"VALUES":   {},
	"CALL":     {},
}

// ReturnsRows reports whether the first outcome of a statement is tabular,
// judging by its leading keyword.
func ReturnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	word := strings.ToUpper(strings.TrimLeft(fields[0], "("))
	_, ok := tabularKeywords[word]
	return ok
}

// Run executes a statement of unknown kind and writes a rendering of every
// outcome it produces to w. The statement is submitted exactly once; failures
// are not retried.
func (r *Runner) Run(ctx context.Context, w io.Writer, query string) error {
	ctx = klog.CtxWithAttrs(ctx, klog.AString("query", truncateQuery(query)))
	if ReturnsRows(query) {
		return r.runQuery(ctx, w, query)
	}
	return r.runExec(ctx, w, query)
}

func (r *Runner) runExec(ctx context.Context, w io.Writer, query string) error {
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return kerrors.WithKind(err, ErrExec, "Failed to exec statement")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return kerrors.WithKind(err, ErrResults, "Failed counting affected rows")
	}
	r.log.Debug(ctx, "Executed statement", klog.AAny("affected", affected))
	o := Outcome{
		Kind:     KindCount,
		Affected: affected,
	}
	return o.Render(w, r.opts.Delimiter)
}

func (r *Runner) runQuery(ctx context.Context, w io.Writer, query string) (retErr error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return kerrors.WithKind(err, ErrExec, "Failed to query statement")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, "Failed to close rows"))
		}
	}()

	for {
		o, err := r.readResultSet(rows)
		if err != nil {
			return err
		}
		if o != nil {
			if err := o.Render(w, r.opts.Delimiter); err != nil {
				return err
			}
			r.log.Debug(ctx, "Read result set",
				klog.AAny("columns", len(o.Columns)),
				klog.AAny("rows", o.Total),
			)
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return kerrors.WithKind(err, ErrResults, "Failed reading rows")
	}
	return nil
}

// readResultSet drains the current result set into a tabular outcome,
// retaining at most RowLimit rows. A result set without columns yields no
// outcome.
func (r *Runner) readResultSet(rows sqldb.Rows) (*Outcome, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, kerrors.WithKind(err, ErrResults, "Failed reading columns")
	}
	if len(cols) == 0 {
		return nil, nil
	}

	o := &Outcome{
		Kind:    KindTable,
		Columns: cols,
	}
	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for o.Total < r.opts.RowLimit && rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, kerrors.WithKind(err, ErrResults, "Failed scanning row")
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = formatValue(v)
		}
		o.Rows = append(o.Rows, row)
		o.Total++
	}
	if err := rows.Err(); err != nil {
		return nil, kerrors.WithKind(err, ErrResults, "Failed reading rows")
	}
	return o, nil
}

// Render writes a human readable form of the outcome to w.
func (o Outcome) Render(w io.Writer, delimiter string) error {
	if o.Kind == KindCount {
		if _, err := fmt.Fprintf(w, "%d rows affected\n", o.Affected); err != nil {
			return kerrors.WithMsg(err, "Failed writing output")
		}
		return nil
	}
	if _, err := fmt.Fprintln(w, strings.Join(o.Columns, delimiter)); err != nil {
		return kerrors.WithMsg(err, "Failed writing output")
	}
	for _, row := range o.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, delimiter)); err != nil {
			return kerrors.WithMsg(err, "Failed writing output")
		}
	}
	if _, err := fmt.Fprintf(w, "%d rows\n", o.Total); err != nil {
		return kerrors.WithMsg(err, "Failed writing output")
	}
	return nil
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

const maxLoggedQueryLen = 64

func truncateQuery(query string) string {
	if len(query) <= maxLoggedQueryLen {
		return query
	}
	return query[:maxLoggedQueryLen] + "..."
}
