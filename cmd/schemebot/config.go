package main

import (
	"fmt"
	"time"

	"schemebot/internal/backend"
	"schemebot/internal/metrics"
	"schemebot/pkg/types"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if url := cCtx.String("backend-url"); url != "" {
		c.BackendURL = url
	}

	if c.BackendURL == "" {
		return nil, fmt.Errorf("set BACKEND_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.BackendTimeoutSec == 0 {
		c.BackendTimeoutSec = 30
	}

	if c.SessionMaxAgeSec <= 0 {
		c.SessionMaxAgeSec = 3600
	}

	if c.SessionSweepIntervalSec <= 0 {
		c.SessionSweepIntervalSec = 60
	}

	return c, nil
}

func newLogger(config *types.Config, formatter logrus.Formatter) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(formatter)

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	return logger, nil
}

func backendTimeout(config *types.Config) time.Duration {
	return time.Duration(config.BackendTimeoutSec) * time.Second
}

// newCommandClient wires a backend client for the one-shot commands.
func newCommandClient(cCtx *cli.Context) (*backend.Client, *logrus.Logger, error) {
	config, err := loadConfig(cCtx)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(config, &logrus.TextFormatter{})
	if err != nil {
		return nil, nil, err
	}

	client, err := backend.New(config, logger, metrics.New())
	if err != nil {
		return nil, nil, err
	}

	return client, logger, nil
}
