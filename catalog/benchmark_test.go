package catalog

import (
	"strconv"
	"testing"

	"github.com/nickyhof/sqlfp"
	"github.com/nickyhof/sqlfp/core"
)

var benchIdentity = core.Identity{Name: "benchmark", Email: "bench@test.com"}

func BenchmarkRecordRepeated(b *testing.B) {
	c, err := NewMemory()
	if err != nil {
		b.Fatal(err)
	}
	res, err := sqlfp.Normalize("SELECT * FROM users WHERE id = 1")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Record(res, "generic", benchIdentity); err != nil {
			b.Fatalf("Record error: %v", err)
		}
	}
}

func BenchmarkRecordAllBulk(b *testing.B) {
	results := make([]core.Result, 100)
	for i := range results {
		res, err := sqlfp.Normalize("SELECT c" + strconv.Itoa(i) + " FROM t WHERE id = 1")
		if err != nil {
			b.Fatal(err)
		}
		results[i] = res
	}

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		c, err := NewMemory()
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if _, _, err := c.RecordAll(results, "generic", benchIdentity); err != nil {
			b.Fatalf("RecordAll error: %v", err)
		}
	}
}

func BenchmarkList(b *testing.B) {
	c, err := NewMemory()
	if err != nil {
		b.Fatal(err)
	}
	results := make([]core.Result, 500)
	for i := range results {
		res, err := sqlfp.Normalize("SELECT * FROM t" + strconv.Itoa(i))
		if err != nil {
			b.Fatal(err)
		}
		results[i] = res
	}
	if _, _, err := c.RecordAll(results, "generic", benchIdentity); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.List(); err != nil {
			b.Fatalf("List error: %v", err)
		}
	}
}
