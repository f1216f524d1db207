package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var searchCommand = &cli.Command{
	Name:  "search",
	Usage: "Run a single scheme search against the backend",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "query",
			Aliases:  []string{"q"},
			Usage:    "Natural language search query",
			Required: true,
		},
	},
	Action: func(cCtx *cli.Context) error {
		query := strings.TrimSpace(cCtx.String("query"))
		if query == "" {
			return fmt.Errorf("query must not be blank")
		}

		client, _, err := newCommandClient(cCtx)
		if err != nil {
			return err
		}

		outcome, err := client.Search(context.Background(), query)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if !outcome.Matched() {
			fmt.Println("No schemes found")
			return nil
		}

		for _, r := range outcome.Results {
			fmt.Printf("%3d%% MATCH  %s (%s)\n", r.MatchPercent(), r.Name, r.Category)
		}
		pp.Println(outcome)

		return nil
	},
}
