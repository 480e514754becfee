// Package sqlfp fingerprints SQL statements.
//
// A fingerprint is the statement's canonical text, with every literal value
// replaced by a placeholder, plus the SHA-256 of that text. Statements that
// differ only in literal values, whitespace, comments, alias spelling, join
// keyword verbosity, redundant parentheses, function-name casing or explicit
// ASC ordering share one fingerprint.
//
// # Quick Start
//
//	result, err := sqlfp.Normalize("SELECT * FROM users u WHERE id = 123",
//	    sqlfp.WithDialect("postgres"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Normalized) // SELECT * FROM users u WHERE id = ?
//	fmt.Println(result.Params)     // [123]
//	fmt.Println(result.Hash)       // 64 lowercase hex characters
//
// A Fingerprinter fixes the options once and can be shared between goroutines:
//
//	fp, err := sqlfp.New(sqlfp.WithDialect("mysql"), sqlfp.WithPlaceholder("<val>"))
//	result, err := fp.Normalize("SELECT 1")
//
// # Dialects
//
// Recognized names, case-insensitive:
//   - generic (default), ansi
//   - mysql, mariadb
//   - postgresql, postgres
//   - sqlite
//   - mssql
//   - oracle
//
// # Errors
//
// Failures are typed and match the sentinels with errors.Is:
//   - ConfigurationError (ErrConfiguration): unknown dialect name
//   - SyntaxError (ErrSyntax): the parser's diagnostic, passed through
//   - EmptyInputError (ErrEmptyInput): blank or comment-only input
package sqlfp
