// Package dsn builds database connection strings from configuration.
//
// Configuration values may reference environment variables with $VAR,
// ${VAR}, and ${VAR:-default}, so secrets such as the database password need
// not be written into a config file. A literal dollar sign is written $$.
package dsn

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"xorkevin.dev/kerrors"
)

var (
	errUnclosedBrace = errors.New("unclosed brace in env var reference")
	errInvalidEnvVar = errors.New("invalid env var name")
)

var (
	// ErrInvalidOpts is returned when connection options are invalid
	ErrInvalidOpts errInvalidOpts
)

type (
	errInvalidOpts struct{}
)

func (e errInvalidOpts) Error() string {
	return "Invalid connection options"
}

type (
	// Opts are the connection options resolved from configuration
	Opts struct {
		DSN      string
		Addr     string
		Name     string
		Username string
		Password string
		Params   map[string]string
	}
)

// Build returns the driver DSN for opts after env var substitution on every
// field. An explicit DSN takes precedence over the component fields.
func Build(opts Opts, envOverride map[string]string) (string, error) {
	expanded, err := expandOpts(opts, envOverride)
	if err != nil {
		return "", err
	}
	if expanded.DSN != "" {
		return expanded.DSN, nil
	}
	if expanded.Addr == "" {
		return "", kerrors.WithKind(nil, ErrInvalidOpts, "Database address not provided")
	}
	if expanded.Name == "" {
		return "", kerrors.WithKind(nil, ErrInvalidOpts, "Database name not provided")
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = expanded.Addr
	cfg.DBName = expanded.Name
	cfg.User = expanded.Username
	cfg.Passwd = expanded.Password
	if len(expanded.Params) > 0 {
		cfg.Params = expanded.Params
	}
	return cfg.FormatDSN(), nil
}

func expandOpts(opts Opts, envOverride map[string]string) (Opts, error) {
	var err error
	if opts.DSN, err = expandField(opts.DSN, envOverride, "dsn"); err != nil {
		return Opts{}, err
	}
	if opts.Addr, err = expandField(opts.Addr, envOverride, "addr"); err != nil {
		return Opts{}, err
	}
	if opts.Name, err = expandField(opts.Name, envOverride, "name"); err != nil {
		return Opts{}, err
	}
	if opts.Username, err = expandField(opts.Username, envOverride, "username"); err != nil {
		return Opts{}, err
	}
	if opts.Password, err = expandField(opts.Password, envOverride, "password"); err != nil {
		return Opts{}, err
	}
	if len(opts.Params) > 0 {
		params := make(map[string]string, len(opts.Params))
		for k, v := range opts.Params {
			if params[k], err = expandField(v, envOverride, "params."+k); err != nil {
				return Opts{}, err
			}
		}
		opts.Params = params
	}
	return opts, nil
}

func expandField(val string, envOverride map[string]string, field string) (string, error) {
	expanded, err := replaceEnvVar(val, envOverride)
	if err != nil {
		return "", kerrors.WithKind(err, ErrInvalidOpts, "Invalid env var reference in database."+field)
	}
	return expanded, nil
}
