package cmd

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"xorkevin.dev/kerrors"
	"xorkevin.dev/klog"
	"xorkevin.dev/sqlrun/dsn"
	"xorkevin.dev/sqlrun/runner"
	"xorkevin.dev/sqlrun/runner/sqldb"
	"xorkevin.dev/sqlrun/script"
	"xorkevin.dev/sqlrun/writefs"
)

type (
	execFlags struct {
		file      string
		output    string
		limit     int
		delimiter string
	}
)

func (c *Cmd) getExecCmd() *cobra.Command {
	execCmd := &cobra.Command{
		Use:   "exec [query ...]",
		Short: "Executes sql statements of unknown kind",
		Long: `Executes sql statements of unknown kind and prints their outcomes

Each statement is submitted once. A statement producing tabular results has
its column names and first rows printed, followed by a count of the rows
displayed. A statement producing an affected row count has the count printed.
Every result set a statement produces is printed in order.

Statements are taken from the command line arguments, or from a script file
with -f where - reads standard input. The database connection is configured
under the database key of the config file:

	database:
	  addr: localhost:3306
	  name: exampledb
	  username: admin
	  password: ${SQLRUN_DB_PASSWORD}

Config values may reference environment variables with $VAR, ${VAR}, and
${VAR:-default}. An explicit database.dsn overrides the component fields.`,
		Run:               c.execExec,
		DisableAutoGenTag: true,
	}
	execCmd.PersistentFlags().StringVarP(&c.execFlags.file, "file", "f", "", "sql script file to execute (- for stdin)")
	execCmd.PersistentFlags().StringVarP(&c.execFlags.output, "output", "o", "", "write outcomes to a file instead of stdout")
	execCmd.PersistentFlags().IntVarP(&c.execFlags.limit, "limit", "n", 5, "max rows printed per result set")
	execCmd.PersistentFlags().StringVarP(&c.execFlags.delimiter, "delimiter", "d", ", ", "delimiter between printed values")
	return execCmd
}

func (c *Cmd) execExec(cmd *cobra.Command, args []string) {
	log := c.logger()
	if err := c.execStatements(context.Background(), log, args); err != nil {
		klog.NewLevelLogger(log).Err(context.Background(), err)
		os.Exit(1)
	}
}

func (c *Cmd) execStatements(ctx context.Context, log klog.Logger, args []string) (retErr error) {
	queries, err := c.resolveStatements(args)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return kerrors.WithMsg(nil, "No statements provided")
	}

	connDSN, err := dsn.Build(dsn.Opts{
		DSN:      viper.GetString("database.dsn"),
		Addr:     viper.GetString("database.addr"),
		Name:     viper.GetString("database.name"),
		Username: viper.GetString("database.username"),
		Password: viper.GetString("database.password"),
		Params:   viper.GetStringMapString("database.params"),
	}, nil)
	if err != nil {
		return err
	}

	db, err := sql.Open(viper.GetString("database.driver"), connDSN)
	if err != nil {
		return kerrors.WithMsg(err, "Failed opening database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, "Failed closing database"))
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return kerrors.WithMsg(err, "Failed connecting to database")
	}

	var out io.Writer = os.Stdout
	var fwriter *bufio.Writer
	if c.execFlags.output != "" {
		file, err := writefs.NewOS(".").OpenFile(c.execFlags.output, writefs.OutputFileFlag, writefs.OutputFileMode)
		if err != nil {
			return kerrors.WithMsg(err, "Failed opening output file")
		}
		defer func() {
			if err := file.Close(); err != nil {
				retErr = errors.Join(retErr, kerrors.WithMsg(err, "Failed closing output file"))
			}
		}()
		fwriter = bufio.NewWriter(file)
		out = fwriter
	}

	r := runner.New(log, sqldb.NewSQLDB(db), runner.Opts{
		RowLimit:  c.execFlags.limit,
		Delimiter: c.execFlags.delimiter,
	})
	for _, i := range queries {
		if err := r.Run(ctx, out, i); err != nil {
			return err
		}
	}

	if fwriter != nil {
		if err := fwriter.Flush(); err != nil {
			return kerrors.WithMsg(err, "Failed flushing output file")
		}
	}
	return nil
}

func (c *Cmd) resolveStatements(args []string) (_ []string, retErr error) {
	if c.execFlags.file == "" {
		var queries []string
		for _, i := range args {
			stmts, err := script.Split(strings.NewReader(i))
			if err != nil {
				return nil, err
			}
			queries = append(queries, stmts...)
		}
		return queries, nil
	}

	if c.execFlags.file == "-" {
		return script.Split(os.Stdin)
	}

	file, err := os.Open(c.execFlags.file)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed opening script file")
	}
	defer func() {
		if err := file.Close(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, "Failed closing script file"))
		}
	}()
	return script.Split(file)
}
