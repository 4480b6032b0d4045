// Copyright (C) 2024, Labx Protocol, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

// Server serves the JSON-RPC endpoint and prometheus metrics over one
// listener, with CORS and gzip applied to every route.
type Server struct {
	log      logging.Logger
	srv      *http.Server
	listener net.Listener

	shutdownTimeout time.Duration
}

func NewServer(
	log logging.Logger,
	listener net.Listener,
	backend Backend,
	gatherer prometheus.Gatherer,
	httpConfig HTTPConfig,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
) (*Server, error) {
	rpcHandler, err := NewJSONRPCHandler(Name, NewJSONRPCServer(backend))
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle(Endpoint, rpcHandler)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(router)
	handler := gziphandler.GzipHandler(corsHandler)

	log.Info("API created",
		zap.Strings("allowedOrigins", allowedOrigins),
		zap.String("endpoint", Endpoint),
	)

	return &Server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       httpConfig.ReadTimeout,
			ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
			WriteTimeout:      httpConfig.WriteTimeout,
			IdleTimeout:       httpConfig.IdleTimeout,
		},
		listener: listener,
	}, nil
}

// Dispatch blocks serving traffic until Shutdown.
func (s *Server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
