package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/freeze"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Runs   freeze.RunService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log every fetch and write"`

	Build   BuildCmd   `cmd:"" help:"Crawl a server and write a static snapshot"`
	History HistoryCmd `cmd:"" help:"List recorded crawl runs"`
}

// BuildCmd is the "build" subcommand. Flags left at their zero value fall
// back to the config file, then to defaults.
type BuildCmd struct {
	Config       string        `short:"c" type:"existingfile" help:"YAML config file"`
	Server       string        `short:"s" help:"Origin of the running server, e.g. http://localhost:3000"`
	Out          string        `short:"o" help:"Output directory (default: dist)"`
	Base         string        `help:"Deployment base path stripped from output paths"`
	Route        []string      `short:"r" help:"Seed route (repeatable, default: /)"`
	NoDiscover   bool          `help:"Only fetch the seed routes"`
	MaxDepth     int           `default:"-1" help:"Maximum link depth from a seed (-1: unbounded)"`
	Ignore       []string      `short:"i" help:"Glob of paths never followed (repeatable)"`
	MaxResources int           `help:"Stop after this many resources (0: unbounded)"`
	Timeout      time.Duration `short:"t" help:"Per-request timeout (default: 10s)"`
	Concurrency  int           `short:"j" help:"Concurrent fetches (default: 4)"`
	RPS          float64       `name:"rps" help:"Requests per second per host (0: unlimited)"`
	Retries      int           `help:"Automatic retries per failed fetch"`
	Sitemap      bool          `help:"Seed routes from robots.txt and sitemap.xml"`
	Robots       bool          `help:"Skip discovered links disallowed by robots.txt"`
	Markdown     bool          `help:"Write a Markdown copy next to every page"`
	RetryFailed  bool          `help:"Also seed URLs that failed in the previous run"`
	Validate     bool          `help:"Fail when a page links to a URL missing from the snapshot"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	RunID  string `arg:"" optional:"" name:"run" help:"Show the entries of this run"`
	Origin string `help:"Only runs against this origin"`
	Limit  int    `short:"n" default:"10" help:"Number of runs to list"`
	State  string `help:"Only entries in this state (pending, crawled or failed)"`
}
