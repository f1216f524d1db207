package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var healthCommand = &cli.Command{
	Name:  "health",
	Usage: "Probe the scheme backend",
	Action: func(cCtx *cli.Context) error {
		client, logger, err := newCommandClient(cCtx)
		if err != nil {
			return err
		}

		status, err := client.Health(context.Background())
		if err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}

		logger.WithField("status", status).Info("backend healthy")
		fmt.Println(status)

		return nil
	},
}
