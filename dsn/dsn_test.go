package dsn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"TEST_DB_PASS": "secret",
	}

	for _, tc := range []struct {
		Name string
		Opts Opts
		DSN  string
		Err  error
	}{
		{
			Name: "builds a dsn from component fields",
			Opts: Opts{
				Addr:     "localhost:3306",
				Name:     "exampledb",
				Username: "admin",
				Password: "secret",
			},
			DSN: "admin:secret@tcp(localhost:3306)/exampledb",
		},
		{
			Name: "expands env vars in fields",
			Opts: Opts{
				Addr:     "localhost:3306",
				Name:     "exampledb",
				Username: "admin",
				Password: "${TEST_DB_PASS}",
			},
			DSN: "admin:secret@tcp(localhost:3306)/exampledb",
		},
		{
			Name: "uses env var defaults",
			Opts: Opts{
				Addr: "${TEST_DB_ADDR:-localhost:3306}",
				Name: "exampledb",
			},
			DSN: "tcp(localhost:3306)/exampledb",
		},
		{
			Name: "prefers an explicit dsn",
			Opts: Opts{
				DSN:  "root:${TEST_DB_PASS}@tcp(dbhost:3306)/other",
				Addr: "ignored:3306",
				Name: "ignored",
			},
			DSN: "root:secret@tcp(dbhost:3306)/other",
		},
		{
			Name: "appends connection params",
			Opts: Opts{
				Addr:     "localhost:3306",
				Name:     "exampledb",
				Username: "admin",
				Password: "secret",
				Params: map[string]string{
					"multiStatements": "true",
				},
			},
			DSN: "admin:secret@tcp(localhost:3306)/exampledb?multiStatements=true",
		},
		{
			Name: "fails without an address",
			Opts: Opts{
				Name: "exampledb",
			},
			Err: ErrInvalidOpts,
		},
		{
			Name: "fails without a database name",
			Opts: Opts{
				Addr: "localhost:3306",
			},
			Err: ErrInvalidOpts,
		},
		{
			Name: "fails on an invalid env var reference",
			Opts: Opts{
				Addr:     "localhost:3306",
				Name:     "exampledb",
				Password: "${OOPS",
			},
			Err: ErrInvalidOpts,
		},
	} {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			assert := require.New(t)

			out, err := Build(tc.Opts, env)
			if tc.Err != nil {
				assert.Error(err)
				assert.ErrorIs(err, tc.Err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.DSN, out)
		})
	}
}
