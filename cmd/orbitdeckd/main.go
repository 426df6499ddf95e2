// Command orbitdeckd is the aggregation daemon: it polls the live feeds,
// persists snapshots, and serves a REST and websocket API so multiple
// dashboards can share one upstream connection.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artemisops/orbitdeck/internal/feeds"
	"github.com/artemisops/orbitdeck/internal/logging"
	"github.com/artemisops/orbitdeck/internal/missions"
	"github.com/artemisops/orbitdeck/internal/server"
	"github.com/artemisops/orbitdeck/internal/state"
	"github.com/artemisops/orbitdeck/internal/store"
)

const (
	defaultRefresh = 5 * time.Second
	minRefresh     = 1 * time.Second
	maxRefresh     = 5 * time.Minute
)

func main() {
	addr := flag.String("addr", ":8090", "HTTP listen address")
	dbPath := flag.String("db", "orbitdeck.db", "SQLite database path")
	refresh := flag.Duration("refresh", defaultRefresh, "Position refresh interval (e.g., 5s, 1m)")
	craft := flag.String("craft", "ISS", "Craft name for crew roster filtering")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if *refresh < minRefresh {
		*refresh = minRefresh
	} else if *refresh > maxRefresh {
		*refresh = maxRefresh
	}

	logger := logging.New(logging.ParseLevel(*logLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = *refresh
	stateMgr := state.NewManager(stateCfg)

	hub := server.NewHub(logger)
	defer hub.CloseAll()

	poller := server.NewPoller(
		feeds.NewClient(),
		missions.NewClient(),
		stateMgr, db, hub, logger, *refresh, *craft)
	go poller.Run(ctx)

	api := server.New(stateMgr, db, hub, logger)
	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}()

	logger.Info("orbitdeckd listening on %s (db %s, refresh %s)", *addr, *dbPath, *refresh)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("orbitdeckd stopped")
}
