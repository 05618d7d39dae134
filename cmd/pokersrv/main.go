// Command pokersrv is the table-core server entrypoint (spec.md §6
// "Administrative endpoints"): its flags cover the transport host/port,
// the persistence connection string, the log level, and the defaults
// applied to newly created tables. Grounded on the teacher's cmd/pokersrv
// (flag-based db/host/port wiring) reworked onto internal/server's
// websocket gateway instead of the teacher's grpc.Server, and on
// lox-pokerforbots' cmd/server for the kong CLI shape.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vctt94/pokertable/internal/clock"
	"github.com/vctt94/pokertable/internal/logging"
	"github.com/vctt94/pokertable/internal/metrics"
	"github.com/vctt94/pokertable/internal/registry"
	"github.com/vctt94/pokertable/internal/server"
	"github.com/vctt94/pokertable/internal/store"
	"github.com/vctt94/pokertable/internal/table"
	"github.com/vctt94/pokertable/internal/wsnet"
)

// CLI is pokersrv's flag surface: transport host/port, the persistence
// connection string and the log level, plus the table
// defaults a runnable server needs somewhere since createTable's wire
// message carries none (see internal/server.Config's doc comment).
type CLI struct {
	Host       string `kong:"default='127.0.0.1',help='Host to listen on.'"`
	Port       int    `kong:"default='4480',help='Port to listen on.'"`
	DB         string `kong:"default='pokertable.sqlite',help='SQLite persistence connection string (path).'"`
	DebugLevel string `kong:"default='info',help='Logging level: trace, debug, info, warn, error.'"`

	SmallBlind     int64         `kong:"default='5',help='Default small blind for new tables.'"`
	BigBlind       int64         `kong:"default='10',help='Default big blind for new tables.'"`
	NumSeats       int           `kong:"default='8',help='Seats per new table (<=8 per spec).'"`
	DefaultBuyIn   int64         `kong:"default='1000',help='Buy-in used when joinTable omits one.'"`
	ActionDeadline time.Duration `kong:"default='30s',help='Per-turn action deadline.'"`
	PostHandDelay  time.Duration `kong:"default='12s',help='Delay between hand-complete and the next deal.'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("pokersrv"),
		kong.Description("Multi-table No-Limit Hold'em server"),
		kong.UsageOnError(),
	)

	logs := logging.New(logging.Config{Level: cli.DebugLevel})
	level := logging.ParseLevel(cli.DebugLevel)
	log := logs.Logger(logging.SubsystemServer, level)

	sqlStore, err := store.Open(cli.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pokersrv: open store %s: %v\n", cli.DB, err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := registry.New(ctx)
	reconciler := &store.MemoryReconciler{}

	tableCfg := table.DefaultConfig(cli.SmallBlind, cli.BigBlind)
	tableCfg.ActionDeadline = cli.ActionDeadline
	tableCfg.PostHandDelay = cli.PostHandDelay

	srv := server.New(reg, sqlStore, sqlStore, sqlStore, reconciler, clock.NewReal(), logs, level, server.Config{
		NumSeats:     cli.NumSeats,
		TableConfig:  tableCfg,
		DefaultBuyIn: cli.DefaultBuyIn,
	})

	if err := srv.ResumeTables(ctx); err != nil {
		log.Warnf("resume persisted tables: %v", err)
	}

	collector := metrics.New(reg, logs.Logger(logging.SubsystemMetrics, level))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws, err := wsnet.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("websocket upgrade failed: %v", err)
			return
		}
		go srv.HandleConn(ctx, ws)
	})
	mux.HandleFunc("/admin/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, collector.Health())
	})
	mux.HandleFunc("/admin/tables", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, collector.TableIDs())
	})
	mux.HandleFunc("/admin/tables/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/admin/tables/"):]
		view, ok, err := collector.Inspect(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, view)
	})

	addr := fmt.Sprintf("%s:%d", cli.Host, cli.Port)
	httpSrv := &http.Server{Addr: addr, Handler: mux}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutting down")
		cancel()
		_ = reg.Shutdown()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Infof("pokersrv listening on %s (db=%s)", addr, cli.DB)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "pokersrv: %v\n", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
