// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// labmarketd serves the read-only marketplace JSON-RPC API and
// prometheus metrics over a single in-process state store. It is the
// development harness for the market engine, not a consensus node.
package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/labx-protocol/labmarket/api"
	"github.com/labx-protocol/labmarket/genesis"
	"github.com/labx-protocol/labmarket/market"
	"github.com/labx-protocol/labmarket/state"
)

// backend adapts the daemon's store and rules to [api.Backend].
type backend struct {
	store *state.DatabaseStore
	rules *genesis.Rules
}

func (b *backend) ReadState() state.Immutable { return b.store }
func (b *backend) Rules() *genesis.Rules      { return b.rules }

func run() error {
	parser := argparse.NewParser("labmarketd", "lab reservation marketplace daemon")
	configPath := parser.String("c", "config", &argparse.Options{
		Required: false,
		Help:     "path to a YAML config file",
	})
	addr := parser.String("a", "addr", &argparse.Options{
		Required: false,
		Help:     "listen address, overrides the config file",
	})
	logLevel := parser.String("l", "log-level", &argparse.Options{
		Required: false,
		Help:     "log level, overrides the config file",
	})
	logDir := parser.String("", "log-dir", &argparse.Options{
		Required: false,
		Help:     "log directory, overrides the config file",
	})
	if err := parser.Parse(os.Args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	c, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *addr != "" {
		c.Addr = *addr
	}
	if *logLevel != "" {
		c.Log.Level = *logLevel
	}
	if *logDir != "" {
		c.Log.Dir = *logDir
	}

	log, err := newLogger(c.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Stop()

	var rulesBytes []byte
	if c.RulesPath != "" {
		if rulesBytes, err = os.ReadFile(c.RulesPath); err != nil {
			return fmt.Errorf("failed to read rules: %w", err)
		}
	}
	rules, err := genesis.New(rulesBytes)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	// Engine counters are registered up front so the /metrics surface
	// is stable even before any action executes.
	registry := prometheus.NewRegistry()
	if _, err := market.NewMetrics(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	store := state.NewDatabaseStore(memdb.New())

	listener, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.Addr, err)
	}

	srv, err := api.NewServer(
		log,
		listener,
		&backend{store: store, rules: rules},
		registry,
		api.HTTPConfig{
			ReadTimeout:       c.HTTP.ReadTimeout,
			ReadHeaderTimeout: c.HTTP.ReadHeaderTimeout,
			WriteTimeout:      c.HTTP.WriteTimeout,
			IdleTimeout:       c.HTTP.IdleTimeout,
		},
		c.AllowedOrigins,
		c.HTTP.ShutdownTimeout,
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("shutting down", zap.Stringer("signal", sig))
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", zap.Error(err))
		}
	}()

	log.Info("serving", zap.String("addr", listener.Addr().String()))
	if err := srv.Dispatch(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
