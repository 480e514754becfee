package sqlfp

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/sqlfp/core"
	"github.com/nickyhof/sqlfp/sql"
)

var allDialects = []string{"generic", "mysql", "postgres", "sqlite", "ansi", "mssql", "oracle"}

var postgresFamily = []string{"postgres", "postgresql"}

type equivalenceCase struct {
	name     string
	dialects []string
	variants []string
}

var equivalenceCases = []equivalenceCase{
	{"parentheses and semicolon", allDialects, []string{
		"SELECT 1;",
		"SELECT (1);",
	}},
	{"comments and whitespace", allDialects, []string{
		"SELECT id, email FROM users;",
		"SELECT id, email FROM users",
		"SELECT id, email /* hello */ FROM users;",
		"SELECT id, /*hello1*/ email /* hello2*/ FROM    users;",
	}},
	{"literal values", allDialects, []string{
		"SELECT * FROM users WHERE id = 42;",
		"SELECT * FROM users WHERE id = 324324;",
		"SELECT * FROM users WHERE id = 'bob';",
	}},
	{"boolean and null casing", allDialects, []string{
		"SELECT * FROM users WHERE is_active = TRUE AND deleted_at IS NULL;",
		"SELECT * FROM users WHERE is_active = False AND deleted_at IS null;",
		"SELECT * FROM users WHERE is_active = FALSE AND deleted_at IS Null;",
	}},
	{"grouping with or and double quoted values", allDialects, []string{
		"SELECT * FROM users WHERE (role = 'admin' OR role = 'notstaff') AND is_active = true;",
		"SELECT * FROM users WHERE (role = 'bob' OR role = 'staff') AND is_active = tRue;",
		`SELECT * FROM users WHERE (role = "ignacio" OR role = "stuff") AND is_active = TrUe;`,
	}},
	{"in list", allDialects, []string{
		"SELECT * FROM users WHERE id IN (1, 2, 3, 4, '5');",
		"SELECT * FROM users WHERE id IN (1, /*2, */ 1234444, 3, 4, 5);",
	}},
	{"not in list", allDialects, []string{
		"SELECT * FROM users WHERE id NOT IN (10, 20, 30);",
		"SELECT * FROM users   wheRe id NOT IN (10, 20, '30');",
	}},
	{"between", allDialects, []string{
		"SELECT * FROM events WHERE created_at BETWEEN '2024-01-01' AND '2024-12-31';",
		"SELECT * FROM events WHERE created_at between  '1010-12-13' AND '12-12-12';",
	}},
	{"order by default direction", allDialects, []string{
		"SELECT id FROM users ORDER BY id LIMIT 10;",
		"SELECT id FROM users ORDER BY id ASC LIMIT 10;",
		"SELECT id FROM users ORDER BY id LIMIT 00010;",
	}},
	{"mysql limit comma", []string{"mysql", "mariadb", "sqlite"}, []string{
		"SELECT id FROM users ORDER BY id LIMIT 20, 10;",
		"SELECT id FROM users ORDER BY id ASC LIMIT 20, 10;",
	}},
	{"distinct", allDialects, []string{
		"SELECT DISTINCT email FROM users;",
		"SELECT distinct email FROM users;",
		"SELECT DISTINCT(email) FROM users;",
	}},
	{"table alias", allDialects, []string{
		"SELECT u.id FROM users AS u;",
		"SELECT u.id FROM users u;",
	}},
	{"column alias", allDialects, []string{
		"SELECT id AS user_id FROM users;",
		"SELECT id user_id FROM users;",
	}},
	{"inner join", allDialects, []string{
		"SELECT u.id, o.id FROM users u JOIN orders o ON o.user_id = u.id;",
		"SELECT u.id, o.id FROM users AS u INNER JOIN orders AS o ON o.user_id = u.id;",
	}},
	{"left join", allDialects, []string{
		"SELECT u.id, p.bio FROM users u LEFT JOIN profiles p ON p.user_id = u.id;",
		"SELECT u.id, p.bio FROM users u LEFT OUTER JOIN profiles p ON p.user_id = u.id;",
	}},
	{"join conditions", allDialects, []string{
		"SELECT * FROM a JOIN b ON a.id = b.a_id AND b.is_active = TRUE;",
		"SELECT * FROM a JOIN b ON (a.id = b.a_id) AND (b.is_active = true);",
	}},
	{"function casing", allDialects, []string{
		"SELECT user_id, COUNT(*) FROM orders GROUP BY user_id;",
		"SELECT user_id, count(*) FROM orders GROUP BY user_id;",
		"SELECT user_id, COUNT( * ) FROM orders GROUP BY user_id;",
	}},
	{"having", allDialects, []string{
		"SELECT user_id, COUNT(*) c FROM orders GROUP BY user_id HAVING COUNT(*) > 10;",
		"SELECT user_id, count( * ) AS c FROM orders GROUP BY user_id HAVING count( * ) > 10;",
	}},
	{"exists", allDialects, []string{
		"SELECT * FROM users u WHERE NOT EXISTS (SELECT 1 FROM orders o WHERE o.user_id = u.id);",
		"SELECT * FROM users u WHERE not exists (SELECT 1 FROM orders AS o WHERE (o.user_id = u.id));",
	}},
	{"union", allDialects, []string{
		"SELECT id FROM users UNION SELECT id FROM admins;",
		"SELECT id FROM users union seLecT id FRoM admins;",
	}},
	{"case", allDialects, []string{
		"SELECT CASE WHEN role = 'admin' THEN 'A' ELSE 'U' END AS kind FROM users;",
		"SELECT CASE WHEN role = 'bob' THEN 'A' ELSE 'U' END kind FROM users;",
	}},
	{"cast", allDialects, []string{
		"SELECT CAST(id AS TEXT) FROM users;",
		"SELECT cast(id AS text) FROM users;",
	}},
	{"postgres cast operator", postgresFamily, []string{
		"SELECT id::uuid FROM users;",
		"SELECT (id)::uuid FROM users;",
	}},
	{"cte", allDialects, []string{
		"WITH u AS (SELECT id FROM users), o AS (SELECT user_id FROM orders) SELECT * FROM u JOIN o ON o.user_id = u.id;",
		"WITH u AS (SELECT id FROM users), o AS (SELECT user_id FROM orders) SELECT * FROM u INNER JOIN o ON o.user_id = u.id;",
	}},
	{"with recursive", []string{"postgres", "sqlite", "mysql"}, []string{
		"WITH RECURSIVE t(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM t WHERE n < 5) SELECT * FROM t;",
		"WITH RECURSIVE t(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM t WHERE n < 10) SELECT * FROM t;",
	}},
	{"window", []string{"postgres", "mysql", "sqlite"}, []string{
		"SELECT ROW_NUMBER() OVER (ORDER BY id) FROM users;",
		"SELECT row_number() OVER (ORDER BY id ASC) FROM users;",
	}},
	{"insert values", allDialects, []string{
		"INSERT INTO users (id, email) VALUES (1, 'a@example.com');",
		"INSERT INTO users (id, email) VALUES (123, 'b@example.com');",
	}},
	{"update", allDialects, []string{
		"UPDATE users SET email = 'a@example.com' WHERE id = 1;",
		"UPDATE users SET email = 'b@example.com' WHERE id = 2;",
	}},
	{"delete", allDialects, []string{
		"DELETE FROM users WHERE id = 1;",
		"DELETE FROM users WHERE id = 2;",
	}},
	{"update from", postgresFamily, []string{
		"UPDATE users u SET email = o.email FROM orders o WHERE o.user_id = u.id;",
		"UPDATE users AS u SET email = o.email FROM orders AS o WHERE o.user_id = u.id;",
	}},
	{"on conflict", postgresFamily, []string{
		"INSERT INTO users (id, email) VALUES (1, 'a@example.com') ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email;",
		"INSERT INTO users (id, email) VALUES (2, 'b@example.com') ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email;",
	}},
	{"on duplicate key update", []string{"mysql", "mariadb"}, []string{
		"INSERT INTO users (id, email) VALUES (1, 'a@example.com') ON DUPLICATE KEY UPDATE email = VALUES(email);",
		"INSERT INTO users (id, email) VALUES (2, 'b@example.com') ON DUPLICATE KEY UPDATE email = values(email);",
	}},
	{"json operators", postgresFamily, []string{
		"SELECT payload->'user'->>'id' FROM events;",
		"SELECT payload -> 'user' ->> 'id' FROM events;",
	}},
	{"any array", postgresFamily, []string{
		"SELECT * FROM users WHERE id = ANY(ARRAY[1,2,3]);",
		"SELECT * FROM users WHERE id = ANY(ARRAY[9,8,7]);",
	}},
	{"arithmetic grouping", allDialects, []string{
		"SELECT (price * quantity) + tax FROM orders;",
		"SELECT ((price * quantity) + tax) FROM orders;",
		"SELECT price * quantity + tax FROM orders;",
	}},
	{"mysql backticks", []string{"mysql", "mariadb"}, []string{
		"SELECT `User`.id, `User`.email FROM `User` WHERE `User`.id = 1;",
		"SELECT `User`.id, `User`.email FROM `User` WHERE `User`.id = 123;",
	}},
	{"mssql top", []string{"mssql"}, []string{
		"SELECT TOP 10 [id] FROM [dbo].[users] AS u WITH (NOLOCK) WHERE u.active = 1",
		"select top 50 [id] from [dbo].[users] u with (NOLOCK) where u.active = 0",
	}},
	{"oracle pagination", []string{"oracle"}, []string{
		`SELECT * FROM (SELECT "AUTH_USER"."ID" AS "COL1" FROM "AUTH_USER" WHERE ("AUTH_USER"."IS_ACTIVE" = 1) ORDER BY "AUTH_USER"."ID" ASC) WHERE ROWNUM <= 100`,
		`SELECT * FROM (SELECT "AUTH_USER"."ID" AS "COL1" FROM "AUTH_USER" WHERE "AUTH_USER"."IS_ACTIVE" = 0 ORDER BY "AUTH_USER"."ID") WHERE ROWNUM <= 10`,
	}},
	{"oracle fetch first", []string{"oracle"}, []string{
		`SELECT "ID" FROM "ORDERS" ORDER BY SUM("TOTAL") DESC FETCH FIRST 100 ROWS ONLY`,
		`SELECT "ID" FROM "ORDERS" ORDER BY sum("TOTAL") DESC FETCH FIRST 5 ROWS ONLY`,
	}},
}

func TestEquivalence(t *testing.T) {
	for _, test := range equivalenceCases {
		for _, name := range test.dialects {
			t.Run(test.name+"/"+name, func(t *testing.T) {
				var first core.Result
				for i, variant := range test.variants {
					result, err := Normalize(variant, WithDialect(name))
					require.NoError(t, err, variant)
					if i == 0 {
						first = result
						continue
					}
					assert.Equal(t, first.Normalized, result.Normalized, variant)
					assert.Equal(t, first.Hash, result.Hash, variant)
				}
			})
		}
	}
}

func TestNormalizeBasics(t *testing.T) {
	query := "SELECT * FROM users WHERE id = 123"
	for _, name := range allDialects {
		for _, placeholder := range []string{"?", "<val>"} {
			t.Run(name+"/"+placeholder, func(t *testing.T) {
				result, err := Normalize(query, WithDialect(name), WithPlaceholder(placeholder))
				require.NoError(t, err)

				sum := sha256.Sum256([]byte(result.Normalized))
				assert.Equal(t, hex.EncodeToString(sum[:]), result.Hash)
				assert.Equal(t, strings.ReplaceAll(query, "123", placeholder), result.Normalized)
				assert.Equal(t, query, result.Original)
				assert.Equal(t, []string{"123"}, result.Params)
			})
		}
	}
}

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name       string
		dialect    string
		sql        string
		normalized string
		params     []string
	}{
		{"required parentheses", "generic",
			"SELECT (1+2)*3",
			"SELECT (? + ?) * ?",
			[]string{"1", "2", "3"}},
		{"redundant parentheses", "generic",
			"SELECT 1+(2*3)",
			"SELECT ? + ? * ?",
			[]string{"1", "2", "3"}},
		{"aliases and joins", "generic",
			"select a.x from t as a inner join u as b on a.id = b.id",
			"SELECT a.x FROM t a JOIN u b ON a.id = b.id",
			[]string{}},
		{"order by", "generic",
			"SELECT x FROM t ORDER BY x ASC, y DESC",
			"SELECT x FROM t ORDER BY x, y DESC",
			[]string{}},
		{"mysql double quoted strings", "mysql",
			`SELECT * FROM t WHERE name = "bob" AND active = TRUE`,
			"SELECT * FROM t WHERE name = ? AND active = ?",
			[]string{`"bob"`, "true"}},
		{"mssql boolean identifiers", "mssql",
			"SELECT * FROM t WHERE active = true",
			"SELECT * FROM t WHERE active = ?",
			[]string{"TRUE"}},
		{"postgres quoted identifier value", "postgres",
			`SELECT "User".id FROM "User" WHERE "User".id = 1`,
			`SELECT "User".id FROM "User" WHERE "User".id = ?`,
			[]string{"1"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := Normalize(test.sql, WithDialect(test.dialect))
			require.NoError(t, err)
			assert.Equal(t, test.normalized, result.Normalized)
			assert.Equal(t, test.params, result.Params)
		})
	}
}

func TestDistinctFingerprints(t *testing.T) {
	pairs := [][2]string{
		{"SELECT x FROM t ORDER BY x", "SELECT x FROM t ORDER BY x DESC"},
		{"SELECT (1 + 2) * 3", "SELECT 1 + 2 * 3"},
		{"SELECT a - (b - c)", "SELECT a - b - c"},
		{"SELECT * FROM a LEFT JOIN b ON TRUE", "SELECT * FROM a JOIN b ON TRUE"},
		{`SELECT "MyFunc"(1)`, "SELECT myfunc(1)"},
	}
	for _, pair := range pairs {
		left, err := Normalize(pair[0])
		require.NoError(t, err)
		right, err := Normalize(pair[1])
		require.NoError(t, err)
		assert.NotEqual(t, left.Hash, right.Hash, pair[0])
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	query := "SELECT u.id, COUNT(*) FROM users AS u LEFT OUTER JOIN orders o ON (o.user_id = u.id) WHERE u.id IN (1, 2) GROUP BY u.id"
	first, err := Normalize(query)
	require.NoError(t, err)
	for range 5 {
		again, err := Normalize(query)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, test := range equivalenceCases {
		for _, name := range test.dialects {
			t.Run(test.name+"/"+name, func(t *testing.T) {
				once, err := Normalize(test.variants[0], WithDialect(name))
				require.NoError(t, err)
				twice, err := Normalize(once.Normalized, WithDialect(name))
				require.NoError(t, err)
				assert.Equal(t, once.Normalized, twice.Normalized)
			})
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	t.Run("unknown dialect", func(t *testing.T) {
		_, err := Normalize("SELECT 1", WithDialect("klingon"))
		require.ErrorIs(t, err, ErrConfiguration)
		var configErr *ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "klingon", configErr.Dialect)
		assert.EqualError(t, err, "Unsupported dialect: klingon")
	})

	t.Run("empty input", func(t *testing.T) {
		for _, text := range []string{"", "   \n", "-- only a comment", "/* block */ ;"} {
			_, err := Normalize(text)
			require.ErrorIs(t, err, ErrEmptyInput, text)
			assert.EqualError(t, err, "No SQL statement found")
		}
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := Normalize("SELECT a FROM t WHERE a = \xff")
		require.ErrorIs(t, err, ErrSyntax)
		assert.ErrorContains(t, err, "Invalid UTF-8 byte 0xff")
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Normalize("SELECT FROM")
		require.ErrorIs(t, err, ErrSyntax)
		var syntaxErr *SyntaxError
		require.ErrorAs(t, err, &syntaxErr)
		assert.Equal(t, "sql parser error: Expected: an expression, found: FROM at Line: 1, Column: 8", syntaxErr.Message)

		var parseErr *sql.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, 8, parseErr.Column)
	})

	t.Run("parser message passes through", func(t *testing.T) {
		_, err := Normalize("SELECT * TROM", WithDialect("mariadb"))
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Parse error: sql parser error: Expected: end of statement,"), err.Error())
	})

	t.Run("error kinds are distinct", func(t *testing.T) {
		_, err := Normalize("")
		assert.False(t, errors.Is(err, ErrSyntax))
		assert.False(t, errors.Is(err, ErrConfiguration))
	})
}

func TestMultipleStatements(t *testing.T) {
	result, err := Normalize("SELECT 1; UPDATE t SET a = 2")
	require.NoError(t, err)
	assert.Equal(t, "SELECT ?", result.Normalized)
	assert.Equal(t, []string{"1"}, result.Params)
	assert.Equal(t, "SELECT 1; UPDATE t SET a = 2", result.Original)

	_, err = Normalize("SELECT 1; SELEC 2")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestCanonicalize(t *testing.T) {
	canonical, err := Canonicalize("select a.x from t as a where (a.y = 1) order by a.x asc", WithDialect("postgres"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT a.x FROM t a WHERE a.y = 1 ORDER BY a.x", canonical)

	_, err = Canonicalize("SELECT 1", WithDialect("nope"))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFingerprinterConcurrentUse(t *testing.T) {
	fp, err := New(WithDialect("POSTGRES"), WithPlaceholder("$?"))
	require.NoError(t, err)
	assert.Equal(t, "postgresql", fp.Dialect().Name)
	assert.Equal(t, "$?", fp.Placeholder())

	want, err := fp.Normalize("SELECT * FROM t WHERE id = 7")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]core.Result, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fp.Normalize("SELECT * FROM t WHERE id = 7")
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.Len(t, Hash("SELECT ?"), 64)
	assert.Equal(t, strings.ToLower(Hash("SELECT ?")), Hash("SELECT ?"))
}
