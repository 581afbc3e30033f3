package cmd

import (
	"context"
	"fmt"

	"github.com/consai/consai/pkg/client"
	"github.com/urfave/cli/v3"
)

// SemanticalCommand creates the semantical command
func SemanticalCommand() *cli.Command {
	return &cli.Command{
		Name:      "semantical",
		Usage:     "Similarity search across the collections",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "source",
				Usage: "Collection(s) to search. Can be used multiple times",
			},
			&cli.BoolFlag{
				Name:  "grouped",
				Usage: "Group results by source instead of one score-sorted list",
				Value: false,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (0 uses the configured default)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSemantical(ctx, c.String("config"), c.Args().First(), c.StringSlice("source"), int(c.Int("limit")), c.Bool("grouped"))
		},
	}
}

func runSemantical(ctx context.Context, configPath, term string, sources []string, limit int, grouped bool) error {
	term, err := requireTerm(term)
	if err != nil {
		return err
	}

	a, err := loadApp(configPath)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		sources = a.cfg.Sources()
	}
	if limit <= 0 {
		limit = a.cfg.MaxResultsDisplay
	}

	ticket := a.flights.Begin(ctx)
	defer a.flights.End(ticket)

	env, err := a.client.SemanticalSearch(ticket.Context(), client.SearchParams{
		Term:    term,
		Sources: sources,
		Model:   a.cfg.Model,
	})
	if err != nil {
		return classifyErr(ticket, err)
	}
	env.Truncate(limit)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Semantical  ●  %s", term)))
	printEnvelope(env, grouped)
	return nil
}
