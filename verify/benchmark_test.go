//go:build duckdb

package verify

import (
	"context"
	"testing"

	"github.com/nickyhof/sqlfp"
)

func BenchmarkEquivalent(b *testing.B) {
	ctx := context.Background()
	c, err := Open(ctx, setup...)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()

	original := "select u.name, sum(o.total) from users u join orders o on o.user_id = u.id group by u.name"
	canonical, err := sqlfp.Canonicalize(original)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Equivalent(ctx, original, canonical); err != nil {
			b.Fatalf("Equivalent error: %v", err)
		}
	}
}

func BenchmarkExecRolledBack(b *testing.B) {
	ctx := context.Background()
	c, err := Open(ctx, setup...)
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()

	for i := 0; i < b.N; i++ {
		if _, err := c.execRolledBack(ctx, "UPDATE users SET active = false WHERE id = 1"); err != nil {
			b.Fatalf("exec error: %v", err)
		}
	}
}
