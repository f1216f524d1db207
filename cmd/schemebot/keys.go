package main

import (
	"encoding/base64"
	"fmt"

	"schemebot/internal/utils"

	"github.com/gorilla/securecookie"
	"github.com/urfave/cli/v2"
)

var keysCommand = &cli.Command{
	Name:  "keys",
	Usage: "Generate cookie keys and sample session IDs",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of sample session IDs to generate",
			Value:   0,
		},
	},
	Action: func(c *cli.Context) error {
		fmt.Printf("COOKIE_HASH_KEY=%s\n", base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(64)))
		fmt.Printf("COOKIE_BLOCK_KEY=%s\n", base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)))

		for range c.Int("count") {
			fmt.Println(utils.NanoID())
		}
		return nil
	},
}
