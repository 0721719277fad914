// fung-server exposes the fung tools as an HTTP endpoint for agent
// frameworks.
//
// Usage:
//
//	go run ./cmd/fung-server -config fung.yaml -port 8080
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

	"github.com/njchilds90/gofung/internal/config"
	"github.com/njchilds90/gofung/internal/logging"
	"github.com/njchilds90/gofung/internal/metrics"
	"github.com/njchilds90/gofung/internal/service"
)

func main() {
	configPath := flag.String("config", "", "config file (.yaml or .toml)")
	port := flag.Int("port", 0, "port to listen on, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	log := logging.New(cfg.Log.Level, cfg.Log.JSON)

	s := &server{
		svc:          service.New(log.With().Str("component", "service").Logger()),
		log:          log,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
	}
	if cfg.Metrics.Enabled {
		s.metrics = metrics.New(cfg.Metrics.Namespace)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout / 3,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("fung server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownWait)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}
}
