package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nickyhof/sqlfp/catalog"
	"github.com/nickyhof/sqlfp/core"
	"github.com/nickyhof/sqlfp/verify"
)

// MaxCell is the widest a statement is shown in a table.
const MaxCell = 60

// Truncate shortens s to n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// Results writes one row per fingerprint.
func Results(w io.Writer, results []core.Result) {
	table := NewTable(w)
	table.Header("hash", "normalized", "params")
	for _, res := range results {
		table.Row(shortHash(res.Hash), Truncate(res.Normalized, MaxCell), strings.Join(res.Params, ", "))
	}
	table.Render()
	fmt.Fprintf(w, "%d fingerprint(s)\n", len(results))
}

// Detail writes every field of res, untruncated.
func Detail(w io.Writer, res core.Result) {
	fmt.Fprintf(w, "Normalized: %s\n", res.Normalized)
	fmt.Fprintf(w, "Hash:       %s\n", res.Hash)
	if len(res.Params) > 0 {
		fmt.Fprintf(w, "Params:     [%s]\n", strings.Join(res.Params, ", "))
	} else {
		fmt.Fprintln(w, "Params:     []")
	}
}

// Entries writes catalog entries in the order given.
func Entries(w io.Writer, entries []catalog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Catalog is empty")
		return
	}
	table := NewTable(w)
	table.Header("hash", "count", "dialect", "last seen", "normalized")
	for _, e := range entries {
		table.Row(
			shortHash(e.Hash),
			strconv.Itoa(e.Count),
			e.Dialect,
			e.LastSeen.Format(time.DateTime),
			Truncate(e.Normalized, MaxCell),
		)
	}
	table.Render()
}

// History writes catalog commits, newest first.
func History(w io.Writer, commits []catalog.Commit) {
	if len(commits) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}
	table := NewTable(w)
	table.Header("commit", "when", "author", "message")
	for _, c := range commits {
		table.Row(c.ID[:min(8, len(c.ID))], c.When.Format(time.DateTime), c.Author, c.Message)
	}
	table.Render()
}

// Verification writes the outcome of an equivalence check on one line.
func Verification(w io.Writer, r verify.Report) {
	order := "unordered"
	if r.Ordered {
		order = "ordered"
	}
	if r.Equivalent {
		fmt.Fprintf(w, "Verified: equivalent (%d row(s), %s)\n", r.Canonical, order)
		return
	}
	fmt.Fprintf(w, "Verified: NOT equivalent (%d vs %d row(s), %s)\n%s", r.Original, r.Canonical, order, r.Diff)
}

// Duration formats an elapsed time the way the REPL footer shows it.
func Duration(d time.Duration) string {
	secs := d.Seconds()
	switch {
	case secs < 0.001:
		return "<1ms"
	case secs < 1:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case secs < 10:
		return fmt.Sprintf("%.1fs", secs)
	case secs < 60:
		return fmt.Sprintf("%ds", int(secs))
	default:
		mins := int(secs / 60)
		remainSecs := int(secs) % 60
		if remainSecs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm%ds", mins, remainSecs)
	}
}
