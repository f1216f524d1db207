package main

import (
	"context"
	"fmt"

	"schemebot/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var verifyCommand = &cli.Command{
	Name:  "verify",
	Usage: "Check eligibility for one scheme",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "scheme", Aliases: []string{"s"}, Usage: "Scheme name as returned by search", Required: true},
		&cli.StringFlag{Name: "age", Usage: "Age in years"},
		&cli.StringFlag{Name: "income", Usage: "Annual income in rupees"},
		&cli.StringFlag{Name: "gender", Usage: "Male, Female or Other", Value: string(types.GenderMale)},
		&cli.StringFlag{Name: "caste", Usage: "General, SC, ST, OBC or Minority"},
		&cli.StringFlag{Name: "occupation", Usage: "Occupation"},
	},
	Action: func(cCtx *cli.Context) error {
		profile, err := types.ParseUserProfile(types.UserProfileForm{
			Age:        cCtx.String("age"),
			Income:     cCtx.String("income"),
			Gender:     cCtx.String("gender"),
			Caste:      cCtx.String("caste"),
			Occupation: cCtx.String("occupation"),
		})
		if err != nil {
			return err
		}

		client, _, err := newCommandClient(cCtx)
		if err != nil {
			return err
		}

		result, err := client.Verify(context.Background(), cCtx.String("scheme"), profile)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}

		fmt.Println(result.Verdict)
		pp.Println(result)

		return nil
	},
}
