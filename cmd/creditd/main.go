/*
main.go - Daemon entry point

PURPOSE:
  Runs the credit engine as a long-lived process: opens the SQLite
  store, wires the engine, and keeps the report scheduler ticking
  until the process is signalled.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load TOML configuration (defaults if the file is absent)
  3. Initialize SQLite store
  4. Wire the engine and start the report scheduler
  5. Block until SIGINT/SIGTERM, then stop the scheduler and close
     the store

COMMAND-LINE FLAGS:
  -db      SQLite database path (default: credit.db)
           Use ":memory:" for an in-memory database
  -config  TOML configuration path (optional)

EXAMPLES:
  # Run with file database and defaults
  ./creditd -db="./data/credit.db"

  # Run with explicit configuration
  ./creditd -db="./data/credit.db" -config="./credit-engine.toml"

SEE ALSO:
  - config/config.go: Configuration surface
  - scheduler/scheduler.go: Report scheduler lifecycle
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/warp/credit-engine/config"
	"github.com/warp/credit-engine/credit"
	"github.com/warp/credit-engine/scheduler"
	"github.com/warp/credit-engine/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "credit.db", "SQLite database path")
	configPath := flag.String("config", "", "TOML configuration path")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load configuration")
		}
		cfg = loaded
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("failed to initialize database")
	}
	defer store.Close()

	engine := credit.NewEngine(store, cfg, log)

	sched := scheduler.New(engine.Reports, cfg.Scheduler, log)
	sched.Start()

	log.Info().Str("db", *dbPath).Msg("credit engine running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	sched.Stop()
}
