package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "schemebot",
		Usage: "Discover government schemes and check eligibility",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-prefix",
				Aliases: []string{"p"},
				Usage:   "Environment variable prefix",
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "backend-url",
				Aliases: []string{"b"},
				Usage:   "Override BACKEND_URL",
			},
		},
		Commands: []*cli.Command{
			serveCommand,
			tuiCommand,
			searchCommand,
			verifyCommand,
			healthCommand,
			keysCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
