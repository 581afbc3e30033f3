package cmd

import (
	"context"
	"fmt"

	"github.com/consai/consai/pkg/client"
	"github.com/urfave/cli/v3"
)

// LexicalCommand creates the lexical command
func LexicalCommand() *cli.Command {
	return &cli.Command{
		Name:      "lexical",
		Usage:     "Exact-match search across the collections",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "source",
				Usage: "Collection(s) to search. Can be used multiple times",
			},
			&cli.BoolFlag{
				Name:  "flat",
				Usage: "Merge groups into one list sorted by score",
				Value: false,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (0 uses the configured default)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runLexical(ctx, c.String("config"), c.Args().First(), c.StringSlice("source"), int(c.Int("limit")), !c.Bool("flat"))
		},
	}
}

func runLexical(ctx context.Context, configPath, term string, sources []string, limit int, grouped bool) error {
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

	env, err := a.client.LexicalSearch(ticket.Context(), client.SearchParams{
		Term:    term,
		Sources: sources,
	})
	if err != nil {
		return classifyErr(ticket, err)
	}
	env.Truncate(limit)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Lexical  ●  %s", term)))
	printEnvelope(env, grouped)
	return nil
}
