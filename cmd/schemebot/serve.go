package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schemebot/internal/backend"
	"schemebot/internal/metrics"
	"schemebot/internal/server"
	"schemebot/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger, err := newLogger(config, &logrus.JSONFormatter{})
	if err != nil {
		return err
	}

	m := metrics.New()

	client, err := backend.New(config, logger, m)
	if err != nil {
		return err
	}

	sessions := session.NewStore(
		client,
		logger,
		m,
		backendTimeout(config),
		time.Duration(config.SessionMaxAgeSec)*time.Second,
	)

	srv, err := server.New(config, logger, sessions)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, time.Duration(config.SessionSweepIntervalSec)*time.Second)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}
