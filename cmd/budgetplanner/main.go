// Command budgetplanner records income and expense transactions and
// renders the budget dashboard in the terminal.
//
// Commands:
//
//	add          Record a transaction
//	update ID    Change fields of a transaction
//	delete ID    Remove a transaction
//	list         Show the filtered, paginated transaction table
//	dashboard    Show summary cards, charts and recent transactions
//	categories   List the categories offered for new transactions
//	watch        Redraw the dashboard whenever another process changes data
//	serve        Serve the JSON API and the text dashboard over HTTP
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/backend"
	"budgetplanner/internal/cli"
	"budgetplanner/internal/config"
	"budgetplanner/internal/dashboard"
	"budgetplanner/internal/log"
	"budgetplanner/internal/render"
	"budgetplanner/internal/store"
)

const version = "0.1.0"

// errReported marks failures that were already printed to the user.
var errReported = errors.New("reported")

type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *store.Store
	backend *backend.BackendResult
	dash    *dashboard.Service
	render  render.Renderer
	events  *amqp.Client

	closeOnce sync.Once
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "version":
		fmt.Printf("budgetplanner v%s\n", version)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	run, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("BUDGETPLANNER_LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	ctx := context.Background()
	a := newApp(ctx, logger, cfg)
	err := run(ctx, a, args)
	a.Close()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, render.FormErrors(err))
		}
		os.Exit(1)
	}
}

func newApp(ctx context.Context, logger *log.Logger, cfg *config.Config) *app {
	s, res := cli.InitStore(ctx, logger, cfg)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		backend: res,
		dash:    dashboard.New(s, dashboard.WithLogger(logger)),
		render:  render.New(cfg.CurrencySymbol),
	}
	s.Subscribe(a.dash.Observe)

	if cfg.AMQPEnabled() {
		a.events = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		s.Subscribe(amqp.NewObserver(ctx, a.events, logger))
		logger.Debug("Publishing transaction events",
			log.FieldExchange, cfg.AMQPExchange,
			log.FieldQueue, cfg.AMQPQueue)
	}
	return a
}

// Close releases the broker connection and the backend. It is safe to call
// more than once.
func (a *app) Close() {
	a.closeOnce.Do(func() {
		if a.events != nil {
			if err := a.events.Close(); err != nil {
				a.logger.Warn("Failed to close AMQP client", log.FieldError, err)
			}
		}
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close backend", log.FieldError, err)
		}
	})
}

func printUsage() {
	fmt.Println("budgetplanner v" + version)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  budgetplanner <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add          Record a transaction")
	fmt.Println("  update ID    Change fields of a transaction")
	fmt.Println("  delete ID    Remove a transaction")
	fmt.Println("  list         Show the transaction table")
	fmt.Println("  dashboard    Show the dashboard")
	fmt.Println("  categories   List known categories")
	fmt.Println("  watch        Redraw the dashboard on change events (needs AMQP)")
	fmt.Println("  serve        Serve the JSON API on http_addr")
	fmt.Println("  version      Print version")
	fmt.Println("  help         Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  budgetplanner add -name Groceries -amount 42,50 -category Food")
	fmt.Println("  budgetplanner list -search food -from 2024-01-01 -page 2")
	fmt.Println("  budgetplanner dashboard -range week -type expense")
	fmt.Println("  budgetplanner serve -addr 127.0.0.1:8081")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  BUDGETPLANNER_CONFIG          TOML config file")
	fmt.Printf("  BUDGETPLANNER_DATA_BACKEND    %s\n", strings.Join(backend.GetBackendTypeStrings(), ", "))
	fmt.Println("  BUDGETPLANNER_FILE_PATH       JSON state file for the file backend")
	fmt.Println("  BUDGETPLANNER_SQLITE_DB_PATH  database for the sqlite backend")
	fmt.Println("  BUDGETPLANNER_AMQP_URL        broker for change events (optional)")
	fmt.Println("  BUDGETPLANNER_HTTP_ADDR       listen address for serve")
	fmt.Println("  BUDGETPLANNER_TRUSTED_PROXIES comma-separated proxy CIDRs for serve")
	fmt.Println("  BUDGETPLANNER_LOG_LEVEL       debug, info, warn or error")
}
