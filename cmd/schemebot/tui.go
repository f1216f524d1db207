package main

import (
	"fmt"
	"io"

	"schemebot/internal/backend"
	"schemebot/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var tuiCommand = &cli.Command{
	Name:  "tui",
	Usage: "Search schemes and check eligibility from the terminal",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Write logs to this file instead of discarding them",
		},
	},
	Action: func(cCtx *cli.Context) error {
		config, err := loadConfig(cCtx)
		if err != nil {
			return err
		}

		logger, err := newLogger(config, &logrus.TextFormatter{DisableColors: true})
		if err != nil {
			return err
		}

		// the terminal belongs to the program while it runs
		logger.SetOutput(io.Discard)
		if path := cCtx.String("log-file"); path != "" {
			f, err := tea.LogToFile(path, "schemebot")
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			logger.SetOutput(f)
		}

		client, err := backend.New(config, logger, nil)
		if err != nil {
			return err
		}

		model := tui.New(client, logger, nil, backendTimeout(config))
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("run terminal ui: %w", err)
		}

		return nil
	},
}
