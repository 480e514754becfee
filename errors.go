package sqlfp

import "errors"

// Sentinels matched by errors.Is against ConfigurationError, SyntaxError and
// EmptyInputError respectively.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrSyntax        = errors.New("syntax error")
	ErrEmptyInput    = errors.New("empty input")
)

// ConfigurationError reports a dialect name that is not recognized.
type ConfigurationError struct {
	Dialect string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return "Unsupported dialect: " + e.Dialect
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// SyntaxError carries the parser's diagnostic unchanged. Err is the
// underlying *sql.ParseError.
type SyntaxError struct {
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	return "Parse error: " + e.Message
}

func (e *SyntaxError) Unwrap() error { return e.Err }

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// EmptyInputError reports input that holds no statement, such as blank text
// or comments only.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string {
	return "No SQL statement found"
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }
