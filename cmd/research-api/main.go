// Command research-api runs the HTTP bridge in front of the Temporal research
// workflow. It connects to Temporal (cloud or local, selected by
// CONNECT_CLOUD), mounts the JSON API plus the static frontend and shuts down
// gracefully on SIGINT/SIGTERM.
//
// Configuration is environment-sourced; see the config package for the list
// of variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goa.design/clue/debug"
	"goa.design/clue/log"

	"github.com/temporal-sa/interactive-research/api"
	"github.com/temporal-sa/interactive-research/config"
	enginetemporal "github.com/temporal-sa/interactive-research/engine/temporal"
)

func main() {
	var (
		dbgF = flag.Bool("debug", false, "Log request and response bodies")
	)
	flag.Parse()

	// Setup logger.
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(ctx, err, "invalid configuration")
	}
	log.Print(ctx,
		log.KV{K: "temporal", V: cfg.HostPort()},
		log.KV{K: "namespace", V: cfg.Namespace()},
		log.KV{K: "task-queue", V: cfg.TaskQueue},
		log.KV{K: "http-addr", V: cfg.HTTPAddr},
	)

	// Connect to Temporal. The client is owned here and closed on exit; the
	// engine only borrows it.
	tc, err := enginetemporal.Dial(ctx, enginetemporal.Options{Config: cfg})
	if err != nil {
		log.Fatalf(ctx, err, "connect to temporal at %s", cfg.HostPort())
	}
	defer tc.Close()

	eng, err := enginetemporal.New(tc, cfg.TaskQueue)
	if err != nil {
		log.Fatalf(ctx, err, "create engine")
	}

	mux := api.New(eng, cfg).Handler()
	if *dbgF {
		// Mount pprof handlers under /debug/pprof and the debug-log enabler
		// under /debug.
		debug.MountPprofHandlers(debug.Adapt(mux))
		debug.MountDebugLogEnabler(debug.Adapt(mux))
	}

	var handler http.Handler = mux
	if *dbgF {
		handler = debug.HTTP()(handler)
	}
	handler = log.HTTP(ctx)(handler)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: handler, ReadHeaderTimeout: 60 * time.Second}

	// Channel used by both the signal handler and the server goroutine to
	// notify the main goroutine when to stop.
	errc := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errc <- fmt.Errorf("%s", <-c)
	}()
	go func() {
		log.Printf(ctx, "HTTP server listening on %q", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	log.Printf(ctx, "exiting (%v)", <-errc)

	// Shutdown gracefully with a 30s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf(ctx, "failed to shutdown: %v", err)
	}
	log.Printf(ctx, "exited")
}
