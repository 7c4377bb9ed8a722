// Command mnemosyne runs the memory service: it connects to the backing
// graph store, installs its schema, and serves the JSON-RPC tool surface
// over HTTP until interrupted.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oveku/mnemosyne/internal/config"
	"github.com/oveku/mnemosyne/internal/graph"
	"github.com/oveku/mnemosyne/internal/logging"
	"github.com/oveku/mnemosyne/internal/mcpserver"
	"github.com/oveku/mnemosyne/internal/memory"
)

func main() {
	log := logging.New()
	baseCtx := logging.IntoContext(context.Background(), log)

	cfg := config.Load()
	log.Info("configuration loaded", "bind", cfg.Bind, "port", cfg.Port, "multi_tenant", cfg.MultiTenant, "neo4j_uri", cfg.Neo4jURI)

	connectCtx, cancelConnect := context.WithTimeout(baseCtx, 30*time.Second)
	gateway, err := graph.New(connectCtx, graph.Config{
		URI:      cfg.Neo4jURI,
		User:     cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	}, log.WithName("graph"))
	cancelConnect()
	if err != nil {
		log.Error(err, "failed to connect to graph store")
		os.Exit(1)
	}
	defer func() {
		_ = gateway.Close(context.Background())
	}()

	initCtx, cancelInit := context.WithTimeout(baseCtx, 30*time.Second)
	if err := gateway.Initialize(initCtx); err != nil {
		cancelInit()
		log.Error(err, "failed to install schema")
		os.Exit(1)
	}
	cancelInit()

	engine := memory.New(graph.NewStore(gateway), cfg.MultiTenant, log.WithName("engine"))
	dispatcher := mcpserver.NewDispatcher(engine, log.WithName("dispatcher"))
	server := mcpserver.NewServer(dispatcher, log.WithName("http"))

	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	// Every request runs under the configured deadline, and its context
	// carries the process logger for the request-logging middleware.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCtx, cancel := context.WithTimeout(r.Context(), cfg.RequestTimeout)
		defer cancel()
		server.ServeHTTP(w, r.WithContext(reqCtx))
	})
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("serving", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "server failed")
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(baseCtx, 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "error shutting down server")
	}
}
