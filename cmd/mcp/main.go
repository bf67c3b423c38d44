// Command mcp runs the stdio variant of the MCP server: newline-delimited
// JSON-RPC on stdin/stdout, one session per process (spec §4.2, §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/richard-senior/mcp/internal/logger"
	"github.com/richard-senior/mcp/pkg/protocol"
	"github.com/richard-senior/mcp/pkg/server"
	"github.com/richard-senior/mcp/pkg/transport"
)

const version = "1.0.0"

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	sqlitePath := flag.String("sqlite", "", "Path to the sqlite file backing resource subscriptions (default ~/.mcp/mcp.db)")
	flag.Parse()

	// A stdio server must never let log lines land on stdout: that stream
	// carries protocol frames only, so every log write goes to stderr.
	logger.SetLogOutput('s')
	if *debug {
		logger.SetLevel(logger.DEBUG)
	}

	t := transport.NewStdioTransport(os.Stdin, os.Stdout)
	srv, err := server.New(t, server.Options{
		Implementation: protocol.Implementation{Name: "richard-senior-mcp", Version: version},
		Instructions:   "Example Model Context Protocol server exposing calculator, search, and page-rendering tools.",
		SQLitePath:     *sqlitePath,
	})
	if err != nil {
		logger.Fatal("failed to construct server", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("shutting down on signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		logger.Error("server exited with error", err)
		srv.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	srv.Close()
}
