package sqlfp

import (
	"strconv"
	"strings"
	"testing"

	"github.com/nickyhof/sqlfp/dialect"
	"github.com/nickyhof/sqlfp/sql"
)

var benchmarkQueries = []struct {
	name  string
	query string
}{
	{"SimpleSelect", "SELECT * FROM users"},
	{"SelectWithWhere", "SELECT * FROM users WHERE age > 30"},
	{"SelectWithIn", "SELECT * FROM users WHERE city IN ('City1', 'City2', 'City3')"},
	{"SelectComplex", "SELECT u.name, COUNT(*) FROM users u JOIN orders o ON o.user_id = u.id WHERE u.age > 25 AND o.total >= 10.5 GROUP BY u.name HAVING COUNT(*) > 2 ORDER BY 2 DESC LIMIT 10"},
	{"Subquery", "SELECT * FROM users WHERE id IN (SELECT user_id FROM orders WHERE total > (SELECT AVG(total) FROM orders))"},
	{"Insert", "INSERT INTO users (id, name, age, city) VALUES (1, 'Test', 25, 'NYC')"},
	{"Update", "UPDATE users SET age = 30 WHERE id = 1"},
	{"Delete", "DELETE FROM users WHERE id = 1"},
}

func BenchmarkLexer(b *testing.B) {
	query := benchmarkQueries[3].query
	for i := 0; i < b.N; i++ {
		if _, err := sql.NewLexer(query, dialect.Generic).Tokenize(); err != nil {
			b.Fatalf("Lex error: %v", err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	for _, q := range benchmarkQueries {
		b.Run(q.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := sql.Parse(q.query, dialect.Generic); err != nil {
					b.Fatalf("Parse error: %v", err)
				}
			}
		})
	}
}

func BenchmarkNormalize(b *testing.B) {
	fp, err := New()
	if err != nil {
		b.Fatal(err)
	}
	for _, q := range benchmarkQueries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := fp.Normalize(q.query); err != nil {
					b.Fatalf("Normalize error: %v", err)
				}
			}
		})
	}
}

func BenchmarkNormalizeParallel(b *testing.B) {
	fp, err := New(WithDialect("postgres"))
	if err != nil {
		b.Fatal(err)
	}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := fp.Normalize("SELECT * FROM users WHERE id = $1 AND name = 'x'"); err != nil {
				b.Fatalf("Normalize error: %v", err)
			}
		}
	})
}

func BenchmarkNormalizeLargeInList(b *testing.B) {
	values := make([]string, 1000)
	for i := range values {
		values[i] = strconv.Itoa(i)
	}
	query := "SELECT * FROM users WHERE id IN (" + strings.Join(values, ", ") + ")"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Normalize(query); err != nil {
			b.Fatalf("Normalize error: %v", err)
		}
	}
}

func BenchmarkHash(b *testing.B) {
	normalized := "SELECT * FROM users WHERE age > ? AND city = ?"
	for i := 0; i < b.N; i++ {
		Hash(normalized)
	}
}
