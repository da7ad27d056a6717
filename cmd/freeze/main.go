package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/freeze/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main wires the CLI to the state database.
type Main struct {
	// State database path. Set before calling Run().
	DBPath string

	// SQLite database holding run history.
	DB *sqlite.DB
}

// NewMain returns a Main using the default state database path.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close releases the state database.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("freeze"),
		kong.Description("Crawl a running web server into a static snapshot"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // help must not terminate tests
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("build command parser: %w", err)
	}

	switch {
	case len(args) == 0:
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'freeze --help' to see available commands")
	case args[0] == "help", args[0] == "--help", args[0] == "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set FREEZE_STATE to use a different state database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.Runs = sqlite.NewRunService(m.DB)

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("FREEZE_STATE"); path != "" {
		return path
	}
	path, err := xdg.DataFile(filepath.Join("freeze", "state.db"))
	if err != nil {
		return "freeze.db"
	}
	return path
}
