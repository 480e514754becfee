package dialect

import (
	"fmt"
	"sort"
	"strings"
)

// Dialect describes the grammar features the lexer and parser enable for one
// SQL variant. Values returned by Lookup are shared and must not be modified.
type Dialect struct {
	Name string

	// IdentifierQuotes lists the opening characters that start a delimited
	// identifier. '[' closes with ']'.
	IdentifierQuotes string
	// DoubleQuotedStrings lexes "text" as a string literal instead of an identifier.
	DoubleQuotedStrings bool
	// BooleanLiterals lexes TRUE and FALSE as literals. When false they stay identifiers.
	BooleanLiterals bool
	// HashComments enables '#' line comments.
	HashComments bool
	// BackslashEscapes treats '\' inside string literals as an escape character.
	BackslashEscapes bool

	SupportsCastOperator  bool // expr::type
	SupportsILike         bool
	SupportsJSONOperators bool // -> ->> #> #>> @> <@
	SupportsDistinctOn    bool
	SupportsAnyAll        bool
	SupportsLimitComma    bool // LIMIT offset, count
	SupportsTop           bool // SELECT TOP n
	SupportsRegexp        bool // REGEXP / RLIKE
	SupportsIntegerDiv    bool // a DIV b
	SupportsNullSafeEq    bool // <=>
	SupportsApply         bool // CROSS APPLY / OUTER APPLY
	SupportsDollarQuotes  bool // $$text$$
	// SupportsEscapedStrings lexes E'...' as a C-style escaped string.
	SupportsEscapedStrings bool
}

// UnknownError reports a dialect name that Lookup does not recognize.
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unsupported dialect: %s", e.Name)
}

var (
	Generic = &Dialect{
		Name:                  "generic",
		IdentifierQuotes:      "\"`",
		BooleanLiterals:       true,
		HashComments:          true,
		SupportsCastOperator:  true,
		SupportsILike:         true,
		SupportsJSONOperators: true,
		SupportsDistinctOn:    true,
		SupportsAnyAll:        true,
		SupportsLimitComma:    true,
		SupportsRegexp:        true,
		SupportsIntegerDiv:    true,
		SupportsNullSafeEq:    true,
		SupportsDollarQuotes:  true,

		SupportsEscapedStrings: true,
	}

	ANSI = &Dialect{
		Name:             "ansi",
		IdentifierQuotes: "\"",
		BooleanLiterals:  true,
		SupportsAnyAll:   true,
	}

	MySQL = &Dialect{
		Name:                  "mysql",
		IdentifierQuotes:      "`",
		DoubleQuotedStrings:   true,
		BooleanLiterals:       true,
		HashComments:          true,
		BackslashEscapes:      true,
		SupportsLimitComma:    true,
		SupportsRegexp:        true,
		SupportsIntegerDiv:    true,
		SupportsNullSafeEq:    true,
		SupportsJSONOperators: true,
		SupportsAnyAll:        true,
	}

	PostgreSQL = &Dialect{
		Name:                  "postgresql",
		IdentifierQuotes:      "\"",
		BooleanLiterals:       true,
		SupportsCastOperator:  true,
		SupportsILike:         true,
		SupportsJSONOperators: true,
		SupportsDistinctOn:    true,
		SupportsAnyAll:        true,
		SupportsDollarQuotes:  true,

		SupportsEscapedStrings: true,
	}

	SQLite = &Dialect{
		Name:                  "sqlite",
		IdentifierQuotes:      "\"`[",
		BooleanLiterals:       true,
		SupportsLimitComma:    true,
		SupportsRegexp:        true,
		SupportsJSONOperators: true,
	}

	MSSQL = &Dialect{
		Name:             "mssql",
		IdentifierQuotes: "\"[",
		SupportsTop:      true,
		SupportsApply:    true,
		SupportsAnyAll:   true,
	}

	Oracle = &Dialect{
		Name:             "oracle",
		IdentifierQuotes: "\"",
		SupportsAnyAll:   true,
	}
)

var registry = map[string]*Dialect{
	"generic":    Generic,
	"ansi":       ANSI,
	"mysql":      MySQL,
	"mariadb":    MySQL,
	"postgresql": PostgreSQL,
	"postgres":   PostgreSQL,
	"sqlite":     SQLite,
	"mssql":      MSSQL,
	"oracle":     Oracle,
}

// Lookup returns the dialect registered under name, ignoring case.
func Lookup(name string) (*Dialect, error) {
	if d, ok := registry[strings.ToLower(name)]; ok {
		return d, nil
	}
	return nil, &UnknownError{Name: name}
}

// Names returns every accepted dialect name, aliases included, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsIdentifierQuote reports whether ch opens a delimited identifier.
func (d *Dialect) IsIdentifierQuote(ch byte) bool {
	if ch == '"' && d.DoubleQuotedStrings {
		return false
	}
	return strings.IndexByte(d.IdentifierQuotes, ch) >= 0
}

// ClosingQuote returns the character that terminates a delimited identifier
// opened with ch.
func ClosingQuote(ch byte) byte {
	if ch == '[' {
		return ']'
	}
	return ch
}

func (d *Dialect) String() string {
	return d.Name
}
