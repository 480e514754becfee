package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nickyhof/sqlfp"
	"github.com/nickyhof/sqlfp/catalog"
	"github.com/nickyhof/sqlfp/core"
	"github.com/nickyhof/sqlfp/dialect"
	"github.com/nickyhof/sqlfp/remote"
	"github.com/nickyhof/sqlfp/report"
	"github.com/nickyhof/sqlfp/verify"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

const maxHistory = 1000

// CLI holds the CLI state
type CLI struct {
	fp       *sqlfp.Fingerprinter
	catalog  *catalog.Catalog // nil disables recording
	checker  *verify.Checker  // nil unless -verify
	identity core.Identity
	s3       *remote.S3Config
	logger   *zap.Logger
	out      io.Writer

	jsonOutput  bool
	history     []string
	historyFile string
	done        bool
}

func main() {
	dialectName := flag.String("dialect", sqlfp.DefaultDialect, "SQL dialect")
	placeholder := flag.String("placeholder", sqlfp.DefaultPlaceholder, "Placeholder token for extracted values")
	sqlFile := flag.String("sqlFile", "", "SQL file or URL to fingerprint (non-interactive)")
	baseDir := flag.String("baseDir", "", "Catalog directory (memory if empty)")
	gitURL := flag.String("gitUrl", "", "Git URL to clone the catalog from")
	exportTo := flag.String("export", "", "Write the catalog as JSON lines to this file or URL on exit")
	verifyFlag := flag.Bool("verify", false, "Check canonical forms against an in-memory DuckDB database")
	setupFile := flag.String("setup", "", "SQL file or URL run once in the verification database")
	jsonOutput := flag.Bool("json", false, "Print results as JSON lines")
	debug := flag.Bool("debug", false, "Enable debug logging")
	s3Endpoint := flag.String("s3Endpoint", "", "S3-compatible endpoint for s3:// locations")
	s3Region := flag.String("s3Region", "", "AWS region for s3:// locations")
	userName := flag.String("name", "sqlfp", "User name for catalog commits")
	userEmail := flag.String("email", "cli@sqlfp.local", "User email for catalog commits")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sqlfp v%s\n", Version)
		return
	}

	logger := zap.NewNop()
	if *debug {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer logger.Sync()

	fp, err := sqlfp.New(sqlfp.WithDialect(*dialectName), sqlfp.WithPlaceholder(*placeholder))
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(2)
	}

	interactive := *sqlFile == ""
	if interactive {
		printBanner()
	}

	var cat *catalog.Catalog
	if *baseDir == "" {
		cat, err = catalog.NewMemory(catalog.WithLogger(logger.Named("catalog")))
	} else {
		var gitURLPtr *string
		if *gitURL != "" {
			gitURLPtr = gitURL
		}
		cat, err = catalog.NewFile(*baseDir, gitURLPtr, catalog.WithLogger(logger.Named("catalog")))
	}
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}
	if interactive {
		if *baseDir == "" {
			fmt.Printf("%sUsing memory catalog%s\n", SuccessColor, ResetColor)
		} else {
			fmt.Printf("%sUsing file catalog: %s%s\n", SuccessColor, *baseDir, ResetColor)
		}
	}

	cli := &CLI{
		fp:          fp,
		catalog:     cat,
		identity:    core.Identity{Name: *userName, Email: *userEmail},
		s3:          &remote.S3Config{Endpoint: *s3Endpoint, Region: *s3Region},
		logger:      logger,
		out:         os.Stdout,
		jsonOutput:  *jsonOutput,
		history:     make([]string, 0),
		historyFile: getHistoryPath(),
	}

	if *verifyFlag {
		if err := cli.openChecker(context.Background(), *setupFile); err != nil {
			fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
		defer cli.checker.Close()
	}

	if interactive {
		cli.loadHistory()
		cli.run(os.Stdin)
		cli.saveHistory()
	} else if err := cli.importFile(*sqlFile); err != nil {
		fmt.Printf("%sError importing file: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(1)
	}

	if *exportTo != "" {
		if err := cli.exportCatalog(*exportTo); err != nil {
			fmt.Printf("%sError exporting catalog: %v%s\n", ErrorColor, err, ResetColor)
			os.Exit(1)
		}
	}
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("sqlfp v%s", Version)
	padding := bannerWidth - len(versionLine) - 2 // -2 for "  " margins
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, PromptColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║      SQL Statement Fingerprinting     ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

// openChecker starts the verification database, running the statements at
// setupLocation first when it is set.
func (cli *CLI) openChecker(ctx context.Context, setupLocation string) error {
	var setup []string
	if setupLocation != "" {
		content, err := cli.readLocation(ctx, setupLocation)
		if err != nil {
			return err
		}
		setup = splitStatements(content)
	}

	checker, err := verify.Open(ctx, setup...)
	if err != nil {
		return err
	}
	checker.Dialect = cli.fp.Dialect()
	cli.checker = checker
	cli.logger.Debug("verification database ready", zap.Int("setup_statements", len(setup)))
	return nil
}

func (cli *CLI) run(in io.Reader) {
	reader := bufio.NewReader(in)
	var multiLineBuffer strings.Builder

	for !cli.done {
		fmt.Fprint(cli.out, cli.getPrompt(multiLineBuffer.Len() > 0))

		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			fmt.Fprintf(cli.out, "\n%sGoodbye!%s\n", SuccessColor, ResetColor)
			return
		}

		input = strings.TrimSuffix(input, "\n")
		input = strings.TrimSuffix(input, "\r")

		if strings.TrimSpace(input) == "" {
			continue
		}

		// Dot-commands are only recognized at the start of a statement
		if multiLineBuffer.Len() == 0 && strings.HasPrefix(strings.TrimSpace(input), ".") {
			if cli.handleCommand(input) {
				continue
			}
		}

		// Multi-line support: accumulate until we see a semicolon
		multiLineBuffer.WriteString(input)

		trimmed := strings.TrimSpace(multiLineBuffer.String())
		if !strings.HasSuffix(trimmed, ";") {
			multiLineBuffer.WriteString("\n")
			continue
		}

		text := strings.TrimSuffix(trimmed, ";")
		multiLineBuffer.Reset()

		if strings.TrimSpace(text) == "" {
			continue
		}

		cli.addToHistory(text + ";")
		cli.execute(text)
	}
}

func (cli *CLI) getPrompt(multiLine bool) string {
	if multiLine {
		return fmt.Sprintf("%s   ...>%s ", PromptColor, ResetColor)
	}
	return fmt.Sprintf("%ssqlfp (%s)>%s ", PromptColor, cli.fp.Dialect().Name, ResetColor)
}

func (cli *CLI) printError(err error) {
	fmt.Fprintf(cli.out, "%s✗ Error: %v%s\n", ErrorColor, err, ResetColor)
}

// execute fingerprints every statement in text, records them and prints the
// results.
func (cli *CLI) execute(text string) {
	start := time.Now()
	results, err := cli.fingerprint(text)
	if err != nil {
		cli.printError(err)
		return
	}

	if cli.jsonOutput {
		enc := json.NewEncoder(cli.out)
		for _, res := range results {
			_ = enc.Encode(res)
		}
		return
	}

	if len(results) == 1 {
		report.Detail(cli.out, results[0])
	} else {
		report.Results(cli.out, results)
	}
	cli.verifyResults(results)
	fmt.Fprintf(cli.out, "(%s)\n", report.Duration(time.Since(start)))
}

// fingerprint normalizes each statement in text and records the results in
// the catalog as one commit.
func (cli *CLI) fingerprint(text string) ([]core.Result, error) {
	statements := splitStatements(text)
	if len(statements) <= 1 {
		// Normalize reports empty input itself
		statements = []string{text}
	}

	results := make([]core.Result, 0, len(statements))
	for _, stmt := range statements {
		res, err := cli.fp.Normalize(stmt)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	if cli.catalog != nil {
		if _, _, err := cli.catalog.RecordAll(results, cli.fp.Dialect().Name, cli.identity); err != nil {
			return nil, fmt.Errorf("failed to record: %w", err)
		}
	}
	return results, nil
}

func (cli *CLI) verifyResults(results []core.Result) {
	if cli.checker == nil {
		return
	}
	ctx := context.Background()
	for _, res := range results {
		canonical, err := cli.fp.Canonicalize(res.Original)
		if err != nil {
			cli.printError(err)
			continue
		}
		r, err := cli.checker.Equivalent(ctx, res.Original, canonical)
		if err != nil {
			fmt.Fprintf(cli.out, "%sVerification failed: %v%s\n", ErrorColor, err, ResetColor)
			continue
		}
		report.Verification(cli.out, r)
	}
}

func (cli *CLI) handleCommand(input string) bool {
	parts := strings.Fields(strings.TrimSpace(input))
	if len(parts) == 0 {
		return true
	}
	// Arguments keep their case; locations and placeholders are case sensitive
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case ".quit", ".exit", ".q":
		fmt.Fprintf(cli.out, "%sGoodbye!%s\n", SuccessColor, ResetColor)
		cli.done = true

	case ".help", ".h", ".?":
		cli.printHelp()

	case ".dialect":
		if len(args) == 0 {
			fmt.Fprintf(cli.out, "Dialect: %s (available: %s)\n", cli.fp.Dialect().Name, strings.Join(dialect.Names(), ", "))
			return true
		}
		cli.reconfigure(sqlfp.WithDialect(args[0]), sqlfp.WithPlaceholder(cli.fp.Placeholder()))

	case ".placeholder":
		if len(args) == 0 {
			fmt.Fprintf(cli.out, "Placeholder: %s\n", cli.fp.Placeholder())
			return true
		}
		cli.reconfigure(sqlfp.WithDialect(cli.fp.Dialect().Name), sqlfp.WithPlaceholder(args[0]))

	case ".catalog":
		cli.showCatalog(args)

	case ".log":
		cli.showLog(args)

	case ".forget":
		if len(args) == 0 {
			fmt.Fprintf(cli.out, "%s✗ Usage: .forget <hash>%s\n", ErrorColor, ResetColor)
			return true
		}
		cli.forget(args[0])

	case ".clear", ".cls":
		fmt.Fprint(cli.out, "\033[H\033[2J")

	case ".history":
		cli.printHistory()

	case ".version":
		fmt.Fprintf(cli.out, "sqlfp version %s\n", Version)

	case ".import":
		if len(args) == 0 {
			fmt.Fprintf(cli.out, "%s✗ Usage: .import <file.sql|url>%s\n", ErrorColor, ResetColor)
			return true
		}
		if err := cli.importFile(args[0]); err != nil {
			cli.printError(err)
		}

	case ".export":
		if len(args) == 0 {
			fmt.Fprintf(cli.out, "%s✗ Usage: .export <file|url>%s\n", ErrorColor, ResetColor)
			return true
		}
		if err := cli.exportCatalog(args[0]); err != nil {
			cli.printError(err)
		}

	default:
		fmt.Fprintf(cli.out, "%s✗ Unknown command: %s (type .help for commands)%s\n", ErrorColor, parts[0], ResetColor)
	}

	return true
}

func (cli *CLI) reconfigure(opts ...sqlfp.Option) {
	fp, err := sqlfp.New(opts...)
	if err != nil {
		cli.printError(err)
		return
	}
	cli.fp = fp
	if cli.checker != nil {
		cli.checker.Dialect = fp.Dialect()
	}
	fmt.Fprintf(cli.out, "%s✓ Dialect %s, placeholder %s%s\n", SuccessColor, fp.Dialect().Name, fp.Placeholder(), ResetColor)
}

func (cli *CLI) printHelp() {
	w := cli.out
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%sSpecial Commands:%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Fprintln(w, "  .help, .h            Show this help message")
	fmt.Fprintln(w, "  .quit, .exit         Exit the CLI")
	fmt.Fprintln(w, "  .dialect [name]      Show or change the SQL dialect")
	fmt.Fprintln(w, "  .placeholder [tok]   Show or change the placeholder token")
	fmt.Fprintln(w, "  .import <location>   Fingerprint statements from a file, URL or s3:// object")
	fmt.Fprintln(w, "  .export <location>   Write the catalog as JSON lines")
	fmt.Fprintln(w, "  .catalog [n]         List recorded fingerprints, most frequent first")
	fmt.Fprintln(w, "  .log [n]             Show catalog commits")
	fmt.Fprintln(w, "  .forget <hash>       Remove a fingerprint from the catalog")
	fmt.Fprintln(w, "  .history             Show command history")
	fmt.Fprintln(w, "  .clear               Clear the screen")
	fmt.Fprintln(w, "  .version             Show version info")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Any other input is SQL; end it with ; to fingerprint it.")
	fmt.Fprintln(w)
}

func parseCount(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count: %s", args[0])
	}
	return n, nil
}

func (cli *CLI) showCatalog(args []string) {
	if cli.catalog == nil {
		fmt.Fprintln(cli.out, "No catalog")
		return
	}
	limit, err := parseCount(args)
	if err != nil {
		cli.printError(err)
		return
	}
	entries, err := cli.catalog.List()
	if err != nil {
		cli.printError(err)
		return
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	report.Entries(cli.out, entries)
}

func (cli *CLI) showLog(args []string) {
	if cli.catalog == nil {
		fmt.Fprintln(cli.out, "No catalog")
		return
	}
	limit, err := parseCount(args)
	if err != nil {
		cli.printError(err)
		return
	}
	commits, err := cli.catalog.History(limit)
	if err != nil {
		cli.printError(err)
		return
	}
	report.History(cli.out, commits)
}

func (cli *CLI) forget(hash string) {
	if cli.catalog == nil {
		fmt.Fprintln(cli.out, "No catalog")
		return
	}
	commit, err := cli.catalog.Forget(strings.ToLower(hash), cli.identity)
	if err != nil {
		cli.printError(err)
		return
	}
	fmt.Fprintf(cli.out, "%s✓ %s (commit %s)%s\n", SuccessColor, commit.Message, commit.ID[:8], ResetColor)
}

func (cli *CLI) addToHistory(cmd string) {
	// Don't add duplicates of the last command
	if len(cli.history) > 0 && cli.history[len(cli.history)-1] == cmd {
		return
	}
	cli.history = append(cli.history, cmd)

	if len(cli.history) > maxHistory {
		cli.history = cli.history[len(cli.history)-maxHistory:]
	}
}

func (cli *CLI) printHistory() {
	if len(cli.history) == 0 {
		fmt.Fprintln(cli.out, "No command history")
		return
	}

	start := 0
	if len(cli.history) > 20 {
		start = len(cli.history) - 20
	}

	for i := start; i < len(cli.history); i++ {
		fmt.Fprintf(cli.out, "  %3d  %s\n", i+1, cli.history[i])
	}
}

func getHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sqlfp_history")
}

// History entries are stored one per line, so multi-line statements are
// joined with spaces.
func (cli *CLI) loadHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Open(cli.historyFile)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		cli.history = append(cli.history, scanner.Text())
	}
}

func (cli *CLI) saveHistory() {
	if cli.historyFile == "" {
		return
	}

	file, err := os.Create(cli.historyFile)
	if err != nil {
		cli.logger.Debug("cannot save history", zap.String("path", cli.historyFile), zap.Error(err))
		return
	}
	defer file.Close()

	for _, entry := range cli.history {
		_, _ = file.WriteString(strings.Join(strings.Fields(entry), " ") + "\n")
	}
}

func (cli *CLI) readLocation(ctx context.Context, location string) (string, error) {
	r, err := remote.OpenReader(ctx, location, cli.s3)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", location, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", location, err)
	}
	return string(data), nil
}

// importFile fingerprints each statement at location, which may be a local
// path, an http(s) URL or an s3:// object.
func (cli *CLI) importFile(location string) error {
	content, err := cli.readLocation(context.Background(), location)
	if err != nil {
		return err
	}

	statements := splitStatements(content)
	cli.logger.Debug("importing", zap.String("location", location), zap.Int("statements", len(statements)))

	successCount := 0
	errorCount := 0
	var results []core.Result

	for i, stmt := range statements {
		res, err := cli.fp.Normalize(stmt)
		if err != nil {
			fmt.Fprintf(cli.out, "%s[%d] ✗ %s%s\n", ErrorColor, i+1, truncate(stmt, 50), ResetColor)
			fmt.Fprintf(cli.out, "      Error: %v\n", err)
			errorCount++
			continue
		}
		successCount++
		results = append(results, res)
		if cli.jsonOutput {
			_ = json.NewEncoder(cli.out).Encode(res)
		} else {
			fmt.Fprintf(cli.out, "%s[%d] ✓ %s %s%s\n", SuccessColor, i+1, res.Hash[:12], truncate(res.Normalized, 50), ResetColor)
		}
	}

	if cli.catalog != nil && len(results) > 0 {
		if _, _, err := cli.catalog.RecordAll(results, cli.fp.Dialect().Name, cli.identity); err != nil {
			return fmt.Errorf("failed to record: %w", err)
		}
	}
	if !cli.jsonOutput {
		cli.verifyResults(results)
		fmt.Fprintf(cli.out, "\n%s✓ Import complete: %d succeeded, %d failed%s\n",
			SuccessColor, successCount, errorCount, ResetColor)
	}

	return nil
}

// exportCatalog writes every catalog entry to location as JSON lines.
func (cli *CLI) exportCatalog(location string) error {
	if cli.catalog == nil {
		return fmt.Errorf("no catalog")
	}
	w, err := remote.OpenWriter(context.Background(), location, cli.s3)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", location, err)
	}
	n, err := cli.catalog.Export(w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s✓ Exported %d fingerprint(s) to %s%s\n", SuccessColor, n, location, ResetColor)
	return nil
}

// splitStatements splits SQL content into individual statements. Quoted text
// is kept intact and comments are dropped.
func splitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := byte(0)

	for i := 0; i < len(content); i++ {
		ch := content[i]

		// Handle quoted strings and identifiers
		if (ch == '\'' || ch == '"' || ch == '`') && (i == 0 || content[i-1] != '\\') {
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar {
				inString = false
			}
		}

		// Handle line comments
		if !inString && ch == '-' && i+1 < len(content) && content[i+1] == '-' {
			// Skip to end of line
			for i < len(content) && content[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		}

		// Handle block comments
		if !inString && ch == '/' && i+1 < len(content) && content[i+1] == '*' {
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				i = len(content)
			} else {
				i += end + 3
			}
			current.WriteByte(' ')
			continue
		}

		// Statement separator
		if !inString && ch == ';' {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}

		current.WriteByte(ch)
	}

	// Handle last statement without semicolon
	stmt := strings.TrimSpace(current.String())
	if stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return report.Truncate(s, max)
}
