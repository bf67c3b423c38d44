// Command mcphttp runs the streamable-HTTP/SSE variant of the MCP server:
// POST <base> multiplexes request bodies and single-JSON/SSE replies, GET
// <base> opens the out-of-band server->client stream, and the server
// tolerates many concurrent Mcp-Session-Id sessions (spec §4.2, §6).
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

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/server"
	"github.com/richard-senior/mcp/pkg/transport"
)

const version = "1.0.0"

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	base := flag.String("path", "/mcp", "base path for the MCP endpoint")
	debug := flag.Bool("debug", false, "Enable debug logging")
	sqlitePath := flag.String("sqlite", "", "Path to the sqlite file backing resource subscriptions (default ~/.mcp/mcp.db)")
	flag.Parse()

	if *debug {
		logger.SetLevel(logger.DEBUG)
	}

	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux := transport.NewStreamableHTTPServer()
	mux.OnSession = func(t transport.Transport) {
		srv, err := server.New(t, server.Options{
			Implementation: protocol.Implementation{Name: "richard-senior-mcp", Version: version},
			Instructions:   "Example Model Context Protocol server exposing calculator, search, and page-rendering tools.",
			SQLitePath:     *sqlitePath,
		})
		if err != nil {
			logger.Error("failed to construct server for session", t.SessionID(), err)
			t.Close()
			return
		}
		go func() {
			if err := srv.Start(context.Background()); err != nil {
				logger.Warn("session ended with error", t.SessionID(), err)
			}
			srv.Close()
			mux.CloseSession(t.SessionID())
		}()
	}
	http.Handle(*base, mux)

	httpSrv := &http.Server{
		Addr:         *addr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams are long-lived; no fixed write deadline.
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("shutting down on signal")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening for MCP streamable-HTTP connections", *addr, *base)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server failed", err)
	}
	<-ctx.Done()
	fmt.Fprintln(os.Stderr, "mcphttp: stopped")
}
