package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nickyhof/sqlfp/catalog"
	"github.com/nickyhof/sqlfp/core"
	"github.com/nickyhof/sqlfp/verify"
)

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf)
	table.Header("name", "count")
	table.Row("alpha", "7")
	table.Row("b", "1234")
	table.Render()

	want := strings.Join([]string{
		"+-------+-------+",
		"| name  | count |",
		"+-------+-------+",
		"| alpha |     7 |",
		"| b     |  1234 |",
		"+-------+-------+",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestSimpleTableRaggedRows(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf)
	table.Bulk([][]string{{"a"}, {"b", "c"}})
	table.Render()

	want := strings.Join([]string{
		"+---+---+",
		"| a |   |",
		"| b | c |",
		"+---+---+",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestSimpleTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf).Render()
	assert.Empty(t, buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "SELECT", Truncate("SELECT", 10))
	assert.Equal(t, "SELECT ...", Truncate("SELECT * FROM t", 10))
	assert.Equal(t, "ééé...", Truncate("éééééééé", 6))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestResults(t *testing.T) {
	var buf bytes.Buffer
	Results(&buf, []core.Result{{
		Normalized: "SELECT * FROM t WHERE a = ?",
		Hash:       strings.Repeat("f", 64),
		Params:     []string{"1", "'x'"},
	}})

	out := buf.String()
	assert.Contains(t, out, "| ffffffffffff | SELECT * FROM t WHERE a = ? | 1, 'x' |")
	assert.True(t, strings.HasSuffix(out, "1 fingerprint(s)\n"))
}

func TestDetail(t *testing.T) {
	var buf bytes.Buffer
	Detail(&buf, core.Result{Normalized: "SELECT ?", Hash: "h", Params: []string{"1"}})
	assert.Equal(t, "Normalized: SELECT ?\nHash:       h\nParams:     [1]\n", buf.String())

	buf.Reset()
	Detail(&buf, core.Result{Normalized: "SELECT * FROM t", Hash: "h"})
	assert.Contains(t, buf.String(), "Params:     []\n")
}

func TestEntriesAndHistory(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	Entries(&buf, nil)
	assert.Equal(t, "Catalog is empty\n", buf.String())

	buf.Reset()
	Entries(&buf, []catalog.Entry{{Hash: strings.Repeat("a", 64), Count: 3, Dialect: "mysql", LastSeen: when, Normalized: "SELECT ?"}})
	assert.Contains(t, buf.String(), "| aaaaaaaaaaaa |     3 | mysql   | 2024-03-01 12:30:00 | SELECT ?   |")

	buf.Reset()
	History(&buf, nil)
	assert.Equal(t, "No history\n", buf.String())

	buf.Reset()
	History(&buf, []catalog.Commit{{ID: "0123456789abcdef", When: when, Author: "a <a@b>", Message: "Record aaaaaaaa"}})
	assert.Contains(t, buf.String(), "| 01234567 | 2024-03-01 12:30:00 | a <a@b> | Record aaaaaaaa |")
}

func TestVerification(t *testing.T) {
	var buf bytes.Buffer
	Verification(&buf, verify.Report{Equivalent: true, Canonical: 2})
	assert.Equal(t, "Verified: equivalent (2 row(s), unordered)\n", buf.String())

	buf.Reset()
	Verification(&buf, verify.Report{Ordered: true, Original: 1, Canonical: 0, Diff: "diff\n"})
	assert.Equal(t, "Verified: NOT equivalent (1 vs 0 row(s), ordered)\ndiff\n", buf.String())
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{42 * time.Millisecond, "42ms"},
		{2500 * time.Millisecond, "2.5s"},
		{15 * time.Second, "15s"},
		{2 * time.Minute, "2m"},
		{125 * time.Second, "2m5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.d))
	}
}
