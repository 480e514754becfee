package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nickyhof/sqlfp/dialect"
	"github.com/nickyhof/sqlfp/sql"
)

func TestParameterize(t *testing.T) {
	tests := []struct {
		name        string
		dialect     *dialect.Dialect
		sql         string
		placeholder string
		expected    string
		params      []string
	}{
		{"literals", dialect.Generic,
			"SELECT * FROM t WHERE x = 1 AND y = 'a' AND z IS NULL AND w = ?", "?",
			"SELECT * FROM t WHERE x = ? AND y = ? AND z IS NULL AND w = ?",
			[]string{"1", "'a'"}},
		{"custom placeholder", dialect.Generic,
			"SELECT a FROM t LIMIT 10 OFFSET 20", "<val>",
			"SELECT a FROM t LIMIT <val> OFFSET <val>",
			[]string{"10", "20"}},
		{"numbers keep their text", dialect.Generic,
			"SELECT 1.50, 00010, 1e3", "?",
			"SELECT ?, ?, ?",
			[]string{"1.50", "00010", "1e3"}},
		{"mysql limit comma", dialect.MySQL,
			"SELECT a FROM t LIMIT 5, 10", "?",
			"SELECT a FROM t LIMIT ?, ?",
			[]string{"5", "10"}},
		{"boolean literals", dialect.PostgreSQL,
			"SELECT * FROM t WHERE a = TRUE", "?",
			"SELECT * FROM t WHERE a = ?",
			[]string{"true"}},
		{"boolean identifiers", dialect.MSSQL,
			"SELECT * FROM t WHERE a = true AND b = fAlSe", "?",
			"SELECT * FROM t WHERE a = ? AND b = ?",
			[]string{"TRUE", "FALSE"}},
		{"double quoted identifiers", dialect.PostgreSQL,
			`SELECT "t"."c" FROM t WHERE b = "x"`, "?",
			`SELECT "t"."c" FROM t WHERE b = ?`,
			[]string{`"x"`}},
		{"mysql double quoted strings", dialect.MySQL,
			`SELECT a FROM t WHERE b = "x"`, "?",
			"SELECT a FROM t WHERE b = ?",
			[]string{`"x"`}},
		{"prefixed strings", dialect.PostgreSQL,
			"SELECT E'a\\n', X'FF', N'n'", "?",
			"SELECT ?, ?, ?",
			[]string{"E'a\\n'", "X'FF'", "N'n'"}},
		{"existing placeholders", dialect.Generic,
			"SELECT * FROM t WHERE a = $1 AND b = :name AND c = 3", "?",
			"SELECT * FROM t WHERE a = $1 AND b = :name AND c = ?",
			[]string{"3"}},
		{"rendered order", dialect.Generic,
			"SELECT 1, f(2, 3) FROM t WHERE a = 4 GROUP BY 5 HAVING b > 6 ORDER BY 7 LIMIT 8", "?",
			"SELECT ?, F(?, ?) FROM t WHERE a = ? GROUP BY ? HAVING b > ? ORDER BY ? LIMIT ?",
			[]string{"1", "2", "3", "4", "5", "6", "7", "8"}},
		{"subqueries", dialect.Generic,
			"SELECT a FROM t WHERE a IN (SELECT b FROM u WHERE c = 1) AND d = 2", "?",
			"SELECT a FROM t WHERE a IN (SELECT b FROM u WHERE c = ?) AND d = ?",
			[]string{"1", "2"}},
		{"negative numbers", dialect.Generic,
			"SELECT -1, - -2", "?",
			"SELECT -?, - -?",
			[]string{"1", "2"}},
		{"typed strings stay", dialect.Generic,
			"SELECT DATE '2024-01-01', NULL", "?",
			"SELECT DATE '2024-01-01', NULL",
			[]string{}},
		{"insert values", dialect.Generic,
			"INSERT INTO users (id, email) VALUES (1, 'a@example.com')", "?",
			"INSERT INTO users (id, email) VALUES (?, ?)",
			[]string{"1", "'a@example.com'"}},
		{"update", dialect.Generic,
			"UPDATE users SET email = 'b' WHERE id = 2", "?",
			"UPDATE users SET email = ? WHERE id = ?",
			[]string{"'b'", "2"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stmt := parse(t, test.sql, test.dialect)
			Structure(stmt)
			Expressions(stmt)
			params := Parameterize(stmt, test.placeholder)
			assert.Equal(t, test.expected, sql.Format(stmt))
			assert.Equal(t, test.params, params)
		})
	}
}

func TestParameterizeTwiceExtractsNothing(t *testing.T) {
	stmt := parse(t, "SELECT a FROM t WHERE b = 1 AND c = 'x'", dialect.Generic)
	assert.Len(t, Parameterize(stmt, "?"), 2)
	assert.Empty(t, Parameterize(stmt, "?"))
}
