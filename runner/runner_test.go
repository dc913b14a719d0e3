package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"xorkevin.dev/klog"
	"xorkevin.dev/sqlrun/runner/sqldb"
)

type (
	testResultSet struct {
		columns []string
		rows    [][]interface{}
	}

	testRows struct {
		sets    []testResultSet
		cur     int
		row     int
		scanErr error
		rowsErr error
		closed  bool
	}

	testResult struct {
		affected    int64
		affectedErr error
	}

	testDB struct {
		rows     *testRows
		result   testResult
		queryErr error
		execErr  error
		queries  []string
		execs    []string
	}
)

func (r *testRows) Columns() ([]string, error) {
	return r.sets[r.cur].columns, nil
}

func (r *testRows) Next() bool {
	if r.row >= len(r.sets[r.cur].rows) {
		return false
	}
	r.row++
	return true
}

func (r *testRows) NextResultSet() bool {
	if r.cur+1 >= len(r.sets) {
		return false
	}
	r.cur++
	r.row = 0
	return true
}

func (r *testRows) Scan(dest ...interface{}) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	vals := r.sets[r.cur].rows[r.row-1]
	for i, d := range dest {
		p, ok := d.(*interface{})
		if !ok {
			return errors.New("invalid scan dest")
		}
		*p = vals[i]
	}
	return nil
}

func (r *testRows) Err() error {
	return r.rowsErr
}

func (r *testRows) Close() error {
	r.closed = true
	return nil
}

func (r testResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (r testResult) RowsAffected() (int64, error) {
	return r.affected, r.affectedErr
}

func (d *testDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sqldb.Result, error) {
	d.execs = append(d.execs, query)
	if d.execErr != nil {
		return nil, d.execErr
	}
	return d.result, nil
}

func (d *testDB) QueryContext(ctx context.Context, query string, args ...interface{}) (sqldb.Rows, error) {
	d.queries = append(d.queries, query)
	if d.queryErr != nil {
		return nil, d.queryErr
	}
	return d.rows, nil
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	errDriver := errors.New("driver failure")

	for _, tc := range []struct {
		Name   string
		Query  string
		DB     *testDB
		Opts   Opts
		Output string
		Err    error
	}{
		{
			Name:  "prints all rows of a small result set",
			Query: "SELECT name, quantity FROM inventory",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{
							columns: []string{"name", "quantity"},
							rows: [][]interface{}{
								{[]byte("hammer"), int64(3)},
								{[]byte("wrench"), int64(7)},
								{[]byte("pliers"), int64(12)},
							},
						},
					},
				},
			},
			Output: `name, quantity
hammer, 3
wrench, 7
pliers, 12
3 rows
`,
		},
		{
			Name:  "caps printed rows per result set",
			Query: "select id from items",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{
							columns: []string{"id"},
							rows: [][]interface{}{
								{int64(1)}, {int64(2)}, {int64(3)}, {int64(4)}, {int64(5)}, {int64(6)}, {int64(7)},
							},
						},
					},
				},
			},
			Output: `id
1
2
3
4
5
5 rows
`,
		},
		{
			Name:  "prints the affected row count",
			Query: "UPDATE inventory SET quantity = 0",
			DB: &testDB{
				result: testResult{
					affected: 4,
				},
			},
			Output: "4 rows affected\n",
		},
		{
			Name:  "prints every result set of a statement",
			Query: "CALL inventory_report()",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{
							columns: []string{"name"},
							rows: [][]interface{}{
								{[]byte("hammer")},
								{[]byte("wrench")},
							},
						},
						{
							columns: []string{"total"},
							rows: [][]interface{}{
								{int64(22)},
							},
						},
					},
				},
			},
			Output: `name
hammer
wrench
2 rows
total
22
1 rows
`,
		},
		{
			Name:  "prints nothing for a result set without columns",
			Query: "CALL do_nothing()",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{},
					},
				},
			},
			Output: "",
		},
		{
			Name:  "renders null values",
			Query: "SELECT name, notes FROM inventory",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{
							columns: []string{"name", "notes"},
							rows: [][]interface{}{
								{[]byte("hammer"), nil},
							},
						},
					},
				},
			},
			Output: `name, notes
hammer, NULL
1 rows
`,
		},
		{
			Name:  "honors a custom row limit and delimiter",
			Query: "SELECT id, name FROM items",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{
							columns: []string{"id", "name"},
							rows: [][]interface{}{
								{int64(1), []byte("a")},
								{int64(2), []byte("b")},
								{int64(3), []byte("c")},
							},
						},
					},
				},
			},
			Opts: Opts{
				RowLimit:  2,
				Delimiter: "\t",
			},
			Output: "id\tname\n1\ta\n2\tb\n2 rows\n",
		},
		{
			Name:  "fails on a query error",
			Query: "SELECT broken FROM nowhere",
			DB: &testDB{
				queryErr: errDriver,
			},
			Err: ErrExec,
		},
		{
			Name:  "fails on an exec error",
			Query: "DELETE FROM nowhere",
			DB: &testDB{
				execErr: errDriver,
			},
			Err: ErrExec,
		},
		{
			Name:  "fails on a scan error",
			Query: "SELECT id FROM items",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{
							columns: []string{"id"},
							rows: [][]interface{}{
								{int64(1)},
							},
						},
					},
					scanErr: errDriver,
				},
			},
			Err: ErrResults,
		},
		{
			Name:  "fails on a rows iteration error",
			Query: "SELECT id FROM items",
			DB: &testDB{
				rows: &testRows{
					sets: []testResultSet{
						{
							columns: []string{"id"},
						},
					},
					rowsErr: errDriver,
				},
			},
			Err: ErrResults,
		},
		{
			Name:  "fails on an affected row count error",
			Query: "UPDATE inventory SET quantity = 0",
			DB: &testDB{
				result: testResult{
					affectedErr: errDriver,
				},
			},
			Err: ErrResults,
		},
	} {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			assert := require.New(t)

			r := New(klog.Discard{}, tc.DB, tc.Opts)
			var b bytes.Buffer
			err := r.Run(context.Background(), &b, tc.Query)
			if tc.Err != nil {
				assert.Error(err)
				assert.ErrorIs(err, tc.Err)
			} else {
				assert.NoError(err)
				assert.Equal(tc.Output, b.String())
			}
			if tc.DB.rows != nil {
				assert.True(tc.DB.rows.closed)
			}
		})
	}
}

func TestReturnsRows(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		Name    string
		Query   string
		Tabular bool
	}{
		{
			Name:    "select",
			Query:   "SELECT * FROM inventory",
			Tabular: true,
		},
		{
			Name:    "lowercase select",
			Query:   "  select 1",
			Tabular: true,
		},
		{
			Name:    "parenthesized select",
			Query:   "(SELECT 1) UNION (SELECT 2)",
			Tabular: true,
		},
		{
			Name:    "show",
			Query:   "SHOW TABLES",
			Tabular: true,
		},
		{
			Name:    "cte",
			Query:   "WITH t AS (SELECT 1) SELECT * FROM t",
			Tabular: true,
		},
		{
			Name:    "call",
			Query:   "CALL report()",
			Tabular: true,
		},
		{
			Name:    "insert",
			Query:   "INSERT INTO inventory VALUES (1)",
			Tabular: false,
		},
		{
			Name:    "update",
			Query:   "update inventory set quantity = 0",
			Tabular: false,
		},
		{
			Name:    "ddl",
			Query:   "CREATE TABLE t (id INT)",
			Tabular: false,
		},
		{
			Name:    "empty",
			Query:   "   ",
			Tabular: false,
		},
	} {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			assert := require.New(t)
			assert.Equal(tc.Tabular, ReturnsRows(tc.Query))
		})
	}
}
