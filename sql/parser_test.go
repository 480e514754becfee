package sql

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/sqlfp/dialect"
)

func parseOne(t *testing.T, sql string, d *dialect.Dialect) Statement {
	t.Helper()
	statements, err := Parse(sql, d)
	require.NoError(t, err, sql)
	require.Len(t, statements, 1, sql)
	return statements[0]
}

func TestParser(t *testing.T) {
	tests := []struct {
		name     string
		dialect  *dialect.Dialect
		sql      string
		expected string
	}{
		{"select wildcard", dialect.Generic,
			"select * from users",
			"SELECT * FROM users"},
		{"select aliases", dialect.Generic,
			"SELECT a, b AS c, d e FROM t",
			"SELECT a, b AS c, d AS e FROM t"},
		{"table aliases keep their form", dialect.Generic,
			"SELECT * FROM t AS x JOIN u y ON x.id = y.id",
			"SELECT * FROM t AS x JOIN u y ON x.id = y.id"},
		{"join kinds", dialect.Generic,
			"SELECT * FROM a INNER JOIN b USING (id) LEFT OUTER JOIN c ON a.x = c.x RIGHT JOIN d ON 1 = 1",
			"SELECT * FROM a INNER JOIN b USING (id) LEFT OUTER JOIN c ON a.x = c.x RIGHT JOIN d ON 1 = 1"},
		{"natural and cross joins", dialect.Generic,
			"SELECT * FROM a NATURAL JOIN b CROSS JOIN c",
			"SELECT * FROM a NATURAL JOIN b CROSS JOIN c"},
		{"predicates", dialect.Generic,
			"SELECT a FROM t WHERE x IN (1, 2) AND y NOT BETWEEN 1 AND 10 OR z LIKE 'a%' ESCAPE '!'",
			"SELECT a FROM t WHERE x IN (1, 2) AND y NOT BETWEEN 1 AND 10 OR z LIKE 'a%' ESCAPE '!'"},
		{"not equal renders canonically", dialect.Generic,
			"SELECT a FROM t WHERE b != 1 AND c <> 2",
			"SELECT a FROM t WHERE b <> 1 AND c <> 2"},
		{"order by and limit", dialect.Generic,
			"SELECT a FROM t ORDER BY a ASC, b DESC NULLS LAST LIMIT 10 OFFSET 5",
			"SELECT a FROM t ORDER BY a ASC, b DESC NULLS LAST LIMIT 10 OFFSET 5"},
		{"offset before limit", dialect.Generic,
			"SELECT a FROM t OFFSET 5 LIMIT 10",
			"SELECT a FROM t LIMIT 10 OFFSET 5"},
		{"mysql limit comma", dialect.MySQL,
			"SELECT * FROM t LIMIT 5, 10",
			"SELECT * FROM t LIMIT 5, 10"},
		{"postgres cast and json", dialect.PostgreSQL,
			`SELECT id::uuid, "t"."c"->>'kind' FROM t WHERE name ILIKE 'x%'`,
			`SELECT id::UUID, "t"."c" ->> 'kind' FROM t WHERE name ILIKE 'x%'`},
		{"recursive cte", dialect.PostgreSQL,
			"WITH RECURSIVE t(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM t WHERE n < 10) SELECT n FROM t",
			"WITH RECURSIVE t (n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM t WHERE n < 10) SELECT n FROM t"},
		{"case", dialect.Generic,
			"SELECT CASE WHEN a = 1 THEN 'x' ELSE 'y' END, case b when 1 then 2 end FROM t",
			"SELECT CASE WHEN a = 1 THEN 'x' ELSE 'y' END, CASE b WHEN 1 THEN 2 END FROM t"},
		{"cast and aggregates", dialect.Generic,
			"SELECT CAST(a AS varchar(10)), count(DISTINCT b) FROM t GROUP BY c HAVING count(*) > 1",
			"SELECT CAST(a AS VARCHAR(10)), count(DISTINCT b) FROM t GROUP BY c HAVING count(*) > 1"},
		{"window", dialect.Generic,
			"SELECT row_number() OVER (PARTITION BY a ORDER BY b ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM t",
			"SELECT row_number() OVER (PARTITION BY a ORDER BY b ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) FROM t"},
		{"named window", dialect.Generic,
			"SELECT sum(x) OVER w FROM t WINDOW w AS (ORDER BY y)",
			"SELECT sum(x) OVER w FROM t WINDOW w AS (ORDER BY y)"},
		{"filter", dialect.PostgreSQL,
			"SELECT COUNT(*) FILTER (WHERE x > 1) FROM t",
			"SELECT COUNT(*) FILTER (WHERE x > 1) FROM t"},
		{"within group", dialect.PostgreSQL,
			"SELECT percentile_cont(0.5) WITHIN GROUP (ORDER BY x) FROM t",
			"SELECT percentile_cont(0.5) WITHIN GROUP (ORDER BY x) FROM t"},
		{"insert values", dialect.Generic,
			"INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')",
			"INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')"},
		{"insert select", dialect.Generic,
			"INSERT INTO t (a) SELECT b FROM u",
			"INSERT INTO t (a) SELECT b FROM u"},
		{"insert on conflict", dialect.PostgreSQL,
			`INSERT INTO t ("user_id") VALUES (1) ON CONFLICT ("user_id") DO UPDATE SET "c" = EXCLUDED."c" RETURNING id`,
			`INSERT INTO t ("user_id") VALUES (1) ON CONFLICT ("user_id") DO UPDATE SET "c" = EXCLUDED."c" RETURNING id`},
		{"insert on conflict do nothing", dialect.PostgreSQL,
			"INSERT INTO t (a) VALUES (1) ON CONFLICT DO NOTHING",
			"INSERT INTO t (a) VALUES (1) ON CONFLICT DO NOTHING"},
		{"mysql insert ignore", dialect.MySQL,
			"INSERT IGNORE INTO t (a) VALUES (1) ON DUPLICATE KEY UPDATE a = VALUES(a)",
			"INSERT IGNORE INTO t (a) VALUES (1) ON DUPLICATE KEY UPDATE a = VALUES(a)"},
		{"mysql replace", dialect.MySQL,
			"REPLACE INTO t (a) VALUES (1)",
			"REPLACE INTO t (a) VALUES (1)"},
		{"default values", dialect.PostgreSQL,
			"INSERT INTO t DEFAULT VALUES",
			"INSERT INTO t DEFAULT VALUES"},
		{"update", dialect.Generic,
			"UPDATE t SET a = 1, b = b + 1 WHERE id = 2",
			"UPDATE t SET a = 1, b = b + 1 WHERE id = 2"},
		{"update from", dialect.PostgreSQL,
			"UPDATE t AS x SET a = u.a FROM u WHERE x.id = u.id",
			"UPDATE t AS x SET a = u.a FROM u WHERE x.id = u.id"},
		{"delete", dialect.Generic,
			"DELETE FROM t WHERE id = 1",
			"DELETE FROM t WHERE id = 1"},
		{"delete using", dialect.PostgreSQL,
			"DELETE FROM t USING u WHERE t.id = u.id",
			"DELETE FROM t USING u WHERE t.id = u.id"},
		{"mssql top and hints", dialect.MSSQL,
			"SELECT TOP 10 * FROM [dbo].[users] WITH (NOLOCK)",
			"SELECT TOP 10 * FROM [dbo].[users] WITH (NOLOCK)"},
		{"mssql cross apply", dialect.MSSQL,
			"SELECT * FROM a CROSS APPLY fn(a.id) f",
			"SELECT * FROM a CROSS APPLY fn(a.id) f"},
		{"derived table", dialect.Generic,
			"SELECT * FROM (SELECT 1) AS sub",
			"SELECT * FROM (SELECT 1) AS sub"},
		{"nested join", dialect.Generic,
			"SELECT * FROM (a JOIN b ON a.id = b.id) AS j",
			"SELECT * FROM (a JOIN b ON a.id = b.id) AS j"},
		{"nested join starting with a derived table", dialect.Generic,
			"SELECT * FROM ((SELECT 1) AS a JOIN b ON TRUE)",
			"SELECT * FROM ((SELECT 1) AS a JOIN b ON true)"},
		{"exists", dialect.Generic,
			"SELECT EXISTS (SELECT 1 FROM t), NOT EXISTS(SELECT 2)",
			"SELECT EXISTS (SELECT 1 FROM t), NOT EXISTS (SELECT 2)"},
		{"in subquery", dialect.Generic,
			"SELECT a FROM t WHERE a NOT IN (SELECT b FROM u)",
			"SELECT a FROM t WHERE a NOT IN (SELECT b FROM u)"},
		{"any array", dialect.PostgreSQL,
			"SELECT x FROM t WHERE a = ANY(ARRAY[1,2,3])",
			"SELECT x FROM t WHERE a = ANY(ARRAY[1, 2, 3])"},
		{"all subquery", dialect.PostgreSQL,
			"SELECT x FROM t WHERE a > ALL (SELECT b FROM u)",
			"SELECT x FROM t WHERE a > ALL(SELECT b FROM u)"},
		{"is checks", dialect.PostgreSQL,
			"SELECT a IS DISTINCT FROM b, c IS NOT NULL, d is true FROM t",
			"SELECT a IS DISTINCT FROM b, c IS NOT NULL, d IS TRUE FROM t"},
		{"placeholders", dialect.Generic,
			"SELECT $1, :name, @p, ?",
			"SELECT $1, :name, @p, ?"},
		{"mysql quoting", dialect.MySQL,
			"SELECT \"hello\", `col` FROM t",
			"SELECT \"hello\", `col` FROM t"},
		{"escaped quote", dialect.Generic,
			"SELECT 'it''s'",
			"SELECT 'it''s'"},
		{"set operations", dialect.Generic,
			"SELECT a FROM t UNION SELECT b FROM u INTERSECT SELECT c FROM v",
			"SELECT a FROM t UNION SELECT b FROM u INTERSECT SELECT c FROM v"},
		{"parenthesized set operand", dialect.Generic,
			"(SELECT a FROM t) EXCEPT DISTINCT (SELECT b FROM u) ORDER BY 1",
			"(SELECT a FROM t) EXCEPT DISTINCT (SELECT b FROM u) ORDER BY 1"},
		{"unary operators", dialect.Generic,
			"SELECT -1, +a, NOT b, - -c FROM t",
			"SELECT -1, +a, NOT b, - -c FROM t"},
		{"typed strings and intervals", dialect.Generic,
			"select date '2024-01-01', interval '1' day",
			"SELECT DATE '2024-01-01', INTERVAL '1' DAY"},
		{"oracle fetch", dialect.Oracle,
			"SELECT * FROM t OFFSET 100 ROWS FETCH FIRST 50 ROWS ONLY",
			"SELECT * FROM t OFFSET 100 ROWS FETCH FIRST 50 ROWS ONLY"},
		{"parentheses are kept by the parser", dialect.Generic,
			"SELECT (a + b) * c FROM t",
			"SELECT (a + b) * c FROM t"},
		{"special functions", dialect.Generic,
			"SELECT EXTRACT(year FROM d), SUBSTRING(s FROM 1 FOR 2), TRIM(BOTH 'x' FROM s), POSITION('a' IN s)",
			"SELECT EXTRACT(YEAR FROM d), SUBSTRING(s FROM 1 FOR 2), TRIM(BOTH 'x' FROM s), POSITION('a' IN s)"},
		{"comma form of special functions", dialect.Generic,
			"SELECT substr(s, 1, 2), trim(s)",
			"SELECT substr(s, 1, 2), TRIM(s)"},
		{"niladic functions", dialect.Generic,
			"SELECT CURRENT_TIMESTAMP, now()",
			"SELECT CURRENT_TIMESTAMP, now()"},
		{"locking", dialect.PostgreSQL,
			"SELECT * FROM t FOR UPDATE SKIP LOCKED",
			"SELECT * FROM t FOR UPDATE SKIP LOCKED"},
		{"distinct on", dialect.PostgreSQL,
			"SELECT DISTINCT ON (a) a, b FROM t",
			"SELECT DISTINCT ON (a) a, b FROM t"},
		{"row value in", dialect.PostgreSQL,
			"SELECT * FROM t WHERE (a, b) IN ((1, 2), (3, 4))",
			"SELECT * FROM t WHERE (a, b) IN ((1, 2), (3, 4))"},
		{"qualified wildcard", dialect.Generic,
			"SELECT t.*, u.a FROM t, u",
			"SELECT t.*, u.a FROM t, u"},
		{"mysql regexp and div", dialect.MySQL,
			"SELECT a DIV 2 FROM t WHERE b REGEXP '^x' AND c <=> NULL",
			"SELECT a DIV 2 FROM t WHERE b REGEXP '^x' AND c <=> NULL"},
		{"mssql booleans are identifiers", dialect.MSSQL,
			"SELECT true",
			"SELECT true"},
		{"table function arguments", dialect.PostgreSQL,
			"SELECT * FROM generate_series(1, 10) AS g (n)",
			"SELECT * FROM generate_series(1, 10) AS g (n)"},
		{"unnest", dialect.PostgreSQL,
			"SELECT * FROM UNNEST(ARRAY[1, 2]) WITH ORDINALITY u",
			"SELECT * FROM UNNEST(ARRAY[1, 2]) WITH ORDINALITY u"},
		{"values statement", dialect.Generic,
			"VALUES (1, 2), (3, 4)",
			"VALUES (1, 2), (3, 4)"},
		{"pivot", dialect.MSSQL,
			"SELECT * FROM sales PIVOT(SUM(amount) FOR quarter IN (q1, q2)) AS p",
			"SELECT * FROM sales PIVOT(SUM(amount) FOR quarter IN (q1, q2)) AS p"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			statement := parseOne(t, test.sql, test.dialect)
			assert.Equal(t, test.expected, Format(statement))

			// Rendered output is stable under re-parsing
			again := parseOne(t, test.expected, test.dialect)
			assert.Equal(t, test.expected, Format(again))
		})
	}
}

func TestParserTree(t *testing.T) {
	statement := parseOne(t, "SELECT a + b * c FROM t WHERE NOT x = 1", dialect.Generic)

	expected := &Query{
		Body: &Select{
			Projection: []*SelectItem{{
				Expr: &BinaryOp{
					Left: &Identifier{Ident: Ident{Value: "a"}},
					Op:   OpPlus,
					Right: &BinaryOp{
						Left:  &Identifier{Ident: Ident{Value: "b"}},
						Op:    OpMultiply,
						Right: &Identifier{Ident: Ident{Value: "c"}},
					},
				},
			}},
			From: []*TableWithJoins{{Relation: &Table{Name: ObjectName{{Value: "t"}}}}},
			Where: &UnaryOp{
				Op: OpNot,
				Expr: &BinaryOp{
					Left:  &Identifier{Ident: Ident{Value: "x"}},
					Op:    OpEq,
					Right: &Literal{Kind: NumberValue, Value: "1"},
				},
			},
		},
	}
	if diff := cmp.Diff(expected, statement); diff != "" {
		t.Errorf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestParserPrecedence(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"a OR b AND c", "a OR (b AND c)"},
		{"a AND b OR c", "(a AND b) OR c"},
		{"a - b - c", "(a - b) - c"},
		{"a = b IS NULL", "(a = b) IS NULL"},
		{"NOT a IS NULL", "NOT (a IS NULL)"},
		{"x BETWEEN 1 AND 2 AND y", "(x BETWEEN 1 AND 2) AND y"},
		{"-a * b", "(-a) * b"},
		{"a || b = c", "(a || b) = c"},
		{"a | b & c", "a | (b & c)"},
		{"a::int + 1", "(a::INT) + 1"},
	}

	// explicit renders every compound operand with parentheses
	var explicit func(Expr) string
	explicit = func(expr Expr) string {
		wrap := func(e Expr) string {
			switch e.(type) {
			case *BinaryOp, *UnaryOp, *IsCheck, *Between, *Cast:
				return "(" + explicit(e) + ")"
			}
			return explicit(e)
		}
		switch e := expr.(type) {
		case *BinaryOp:
			return wrap(e.Left) + " " + e.Op.String() + " " + wrap(e.Right)
		case *UnaryOp:
			if e.Op == OpNot {
				return "NOT " + wrap(e.Expr)
			}
			return e.Op.String() + wrap(e.Expr)
		case *IsCheck:
			return wrap(e.Expr) + " " + e.Kind.String()
		case *Between:
			return wrap(e.Expr) + " BETWEEN " + wrap(e.Low) + " AND " + wrap(e.High)
		case *Cast:
			return wrap(e.Expr) + "::" + e.DataType.String()
		}
		return FormatExpr(expr)
	}

	for _, test := range tests {
		t.Run(test.sql, func(t *testing.T) {
			statement := parseOne(t, "SELECT "+test.sql, dialect.PostgreSQL)
			query := statement.(*Query)
			expr := query.Body.(*Select).Projection[0].Expr
			assert.Equal(t, test.expected, explicit(expr))
		})
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		sql     string
		message string
	}{
		{"trailing garbage", dialect.Generic, "SELECT * TROM users", "Expected: end of statement, found: TROM"},
		{"missing projection", dialect.Generic, "SELECT FROM", "Expected: an expression, found: FROM"},
		{"unknown statement", dialect.Generic, "FOO BAR", "Expected: an SQL statement, found: FOO"},
		{"unclosed paren", dialect.Generic, "SELECT (1", "Expected: ), found: EOF"},
		{"two statements without separator", dialect.Generic, "SELECT 1 SELECT 2", "Expected: end of statement, found: SELECT"},
		{"ilike outside postgres", dialect.MySQL, "SELECT a FROM t WHERE a ILIKE 'x'", "Expected: end of statement, found: ILIKE"},
		{"unterminated string", dialect.Generic, "SELECT 'abc", "Unterminated string literal"},
		{"case without when", dialect.Generic, "SELECT CASE a END", "Expected: WHEN, found: END"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.sql, test.dialect)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, test.message, parseErr.Message)
			assert.True(t, strings.HasPrefix(err.Error(), "sql parser error: "+test.message))
		})
	}
}

func TestParserRecursionLimit(t *testing.T) {
	sql := "SELECT " + strings.Repeat("(", 600) + "1" + strings.Repeat(")", 600)
	_, err := Parse(sql, dialect.Generic)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Recursion limit exceeded", parseErr.Message)

	sql = "SELECT " + strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
	_, err = Parse(sql, dialect.Generic)
	assert.NoError(t, err)
}

func TestParseStatements(t *testing.T) {
	statements, err := Parse("SELECT 1; ; UPDATE t SET a = 1;", dialect.Generic)
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Equal(t, QueryStatementType, statements[0].Type())
	assert.Equal(t, UpdateStatementType, statements[1].Type())

	statements, err = Parse("  ;  -- only a comment", dialect.Generic)
	require.NoError(t, err)
	assert.Empty(t, statements)
}

func TestParseErrorFormat(t *testing.T) {
	err := newParseError(1, 10, "Expected: %s, found: %s", "end of statement", "TROM")
	assert.Equal(t, "sql parser error: Expected: end of statement, found: TROM at Line: 1, Column: 10", err.Error())

	err = &ParseError{Message: "Recursion limit exceeded"}
	assert.Equal(t, "sql parser error: Recursion limit exceeded", err.Error())
}
