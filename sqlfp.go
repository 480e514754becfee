package sqlfp

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nickyhof/sqlfp/core"
	"github.com/nickyhof/sqlfp/dialect"
	"github.com/nickyhof/sqlfp/normalize"
	"github.com/nickyhof/sqlfp/sql"
)

// Defaults applied when no option overrides them.
const (
	DefaultDialect     = "generic"
	DefaultPlaceholder = "?"
)

type options struct {
	dialect     string
	placeholder string
}

// Option configures a Fingerprinter or a single Normalize call.
type Option func(*options)

// WithDialect selects the grammar by name, ignoring case. An empty name keeps
// the default.
func WithDialect(name string) Option {
	return func(o *options) {
		if name != "" {
			o.dialect = name
		}
	}
}

// WithPlaceholder sets the token substituted for every extracted value. An
// empty token keeps the default.
func WithPlaceholder(token string) Option {
	return func(o *options) {
		if token != "" {
			o.placeholder = token
		}
	}
}

// Fingerprinter normalizes statements with a fixed dialect and placeholder.
// It holds no mutable state and is safe for concurrent use.
type Fingerprinter struct {
	dialect     *dialect.Dialect
	placeholder string
}

// New validates the options up front so later calls can only fail on input.
func New(opts ...Option) (*Fingerprinter, error) {
	o := options{dialect: DefaultDialect, placeholder: DefaultPlaceholder}
	for _, opt := range opts {
		opt(&o)
	}
	d, err := dialect.Lookup(o.dialect)
	if err != nil {
		return nil, &ConfigurationError{Dialect: o.dialect, Err: err}
	}
	return &Fingerprinter{dialect: d, placeholder: o.placeholder}, nil
}

// Dialect returns the grammar selected at construction.
func (fp *Fingerprinter) Dialect() *dialect.Dialect { return fp.dialect }

// Placeholder returns the token substituted for extracted values.
func (fp *Fingerprinter) Placeholder() string { return fp.placeholder }

// Normalize fingerprints the first statement in text. Every statement must
// parse; the ones after the first are ignored.
func (fp *Fingerprinter) Normalize(text string) (core.Result, error) {
	statements, err := fp.parse(text)
	if err != nil {
		return core.Result{}, err
	}
	return fp.fingerprint(text, statements[0]), nil
}

// Canonicalize returns the normalized text of the first statement with its
// values left in place. The output runs on a database exactly like the input.
func (fp *Fingerprinter) Canonicalize(text string) (string, error) {
	statements, err := fp.parse(text)
	if err != nil {
		return "", err
	}
	stmt := statements[0]
	normalize.Structure(stmt)
	normalize.Expressions(stmt)
	return sql.Format(stmt), nil
}

func (fp *Fingerprinter) parse(text string) ([]sql.Statement, error) {
	statements, err := sql.Parse(text, fp.dialect)
	if err != nil {
		return nil, &SyntaxError{Message: err.Error(), Err: err}
	}
	if len(statements) == 0 {
		return nil, &EmptyInputError{}
	}
	return statements, nil
}

func (fp *Fingerprinter) fingerprint(original string, stmt sql.Statement) core.Result {
	normalize.Structure(stmt)
	normalize.Expressions(stmt)
	params := normalize.Parameterize(stmt, fp.placeholder)
	normalized := sql.Format(stmt)
	return core.Result{
		Original:   original,
		Normalized: normalized,
		Hash:       Hash(normalized),
		Params:     params,
	}
}

// Normalize fingerprints the first statement in text. The dialect defaults
// to generic and the placeholder to "?".
func Normalize(text string, opts ...Option) (core.Result, error) {
	fp, err := New(opts...)
	if err != nil {
		return core.Result{}, err
	}
	return fp.Normalize(text)
}

// Canonicalize returns the normalized text of the first statement in text,
// with the same defaults as Normalize.
func Canonicalize(text string, opts ...Option) (string, error) {
	fp, err := New(opts...)
	if err != nil {
		return "", err
	}
	return fp.Canonicalize(text)
}

// Hash returns the lowercase hex SHA-256 of normalized.
func Hash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
