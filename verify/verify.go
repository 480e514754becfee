// Package verify checks that a canonical statement returns what the original
// did by running both against an in-memory DuckDB database.
package verify

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/nickyhof/sqlfp/dialect"
	sqlast "github.com/nickyhof/sqlfp/sql"
)

// Checker runs statement pairs in one DuckDB database. Statements other than
// queries run inside a transaction that is always rolled back, so every check
// sees the state the setup left.
type Checker struct {
	db *sql.DB

	// Dialect parses the canonical text to decide whether row order matters.
	Dialect *dialect.Dialect
}

// Report describes one comparison.
type Report struct {
	Equivalent bool     `json:"equivalent"`
	Ordered    bool     `json:"ordered"`
	Columns    []string `json:"columns,omitempty"`
	Original   int      `json:"original_rows"`
	Canonical  int      `json:"canonical_rows"`
	Diff       string   `json:"diff,omitempty"`
}

// Open starts an in-memory database and runs each setup statement in order.
func Open(ctx context.Context, setup ...string) (*Checker, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	// Each connection to "" is a separate database.
	db.SetMaxOpenConns(1)

	for _, stmt := range setup {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, multierr.Append(fmt.Errorf("setup %q failed: %w", stmt, err), db.Close())
		}
	}

	return &Checker{db: db, Dialect: dialect.Generic}, nil
}

func (c *Checker) Close() error {
	return c.db.Close()
}

// Equivalent runs original and canonical and compares what they produce. Rows
// are compared in order when canonical has a top-level ORDER BY and as a
// multiset otherwise.
func (c *Checker) Equivalent(ctx context.Context, original, canonical string) (Report, error) {
	ordered, isQuery := c.shape(canonical)
	report := Report{Ordered: ordered}

	if !isQuery {
		return c.compareExec(ctx, original, canonical, report)
	}

	origColumns, origRows, err := c.query(ctx, original)
	if err != nil {
		return report, fmt.Errorf("original: %w", err)
	}
	canonColumns, canonRows, err := c.query(ctx, canonical)
	if err != nil {
		return report, fmt.Errorf("canonical: %w", err)
	}

	report.Columns = canonColumns
	report.Original = len(origRows)
	report.Canonical = len(canonRows)

	if !ordered {
		sortRows(origRows)
		sortRows(canonRows)
	}

	// Column names may legitimately differ, e.g. count(*) against COUNT(*).
	if len(origColumns) != len(canonColumns) {
		report.Diff = cmp.Diff(origColumns, canonColumns)
		return report, nil
	}
	report.Diff = cmp.Diff(origRows, canonRows)
	report.Equivalent = report.Diff == ""
	return report, nil
}

// shape reports whether text is a query and whether it orders its output.
func (c *Checker) shape(text string) (ordered, isQuery bool) {
	statements, err := sqlast.Parse(text, c.Dialect)
	if err != nil || len(statements) == 0 {
		return false, true
	}
	q, ok := statements[0].(*sqlast.Query)
	if !ok {
		return false, false
	}
	return len(q.OrderBy) > 0, true
}

func (c *Checker) query(ctx context.Context, text string) ([]string, [][]string, error) {
	rows, err := c.db.QueryContext(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	result := make([][]string, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				row[i] = "NULL"
			} else {
				row[i] = fmt.Sprint(v)
			}
		}
		result = append(result, row)
	}
	return columns, result, rows.Err()
}

func (c *Checker) compareExec(ctx context.Context, original, canonical string, report Report) (Report, error) {
	origAffected, err := c.execRolledBack(ctx, original)
	if err != nil {
		return report, fmt.Errorf("original: %w", err)
	}
	canonAffected, err := c.execRolledBack(ctx, canonical)
	if err != nil {
		return report, fmt.Errorf("canonical: %w", err)
	}

	report.Original = int(origAffected)
	report.Canonical = int(canonAffected)
	report.Diff = cmp.Diff(origAffected, canonAffected)
	report.Equivalent = report.Diff == ""
	return report, nil
}

func (c *Checker) execRolledBack(ctx context.Context, text string) (affected int64, err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Append(err, tx.Rollback())
	}()

	res, err := tx.ExecContext(ctx, text)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func sortRows(rows [][]string) {
	sort.Slice(rows, func(i, j int) bool {
		return strings.Join(rows[i], "\x1f") < strings.Join(rows[j], "\x1f")
	})
}
