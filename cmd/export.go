package cmd

import (
	"context"
	"fmt"

	"github.com/consai/consai/pkg/client"
	"github.com/consai/consai/pkg/core"
	"github.com/consai/consai/pkg/export"
	"github.com/urfave/cli/v3"
)

// ExportCommand creates the export command
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Run a search and save the results as a document",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Document format: docx, pdf or markdown",
				Value: export.FormatDocx,
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Search mode: lexical or semantical",
				Value: "lexical",
			},
			&cli.StringSliceFlag{
				Name:  "source",
				Usage: "Collection(s) to search. Can be used multiple times",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory to write the document into",
				Value: ".",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runExport(ctx, c.String("config"), c.Args().First(),
				c.String("mode"), c.String("format"), c.StringSlice("source"), c.String("output-dir"))
		},
	}
}

func runExport(ctx context.Context, configPath, term, mode, format string, sources []string, outputDir string) error {
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

	ticket := a.flights.Begin(ctx)
	var env *core.Envelope
	switch mode {
	case string(core.ModeLexical):
		env, err = a.client.LexicalSearch(ticket.Context(), client.SearchParams{Term: term, Sources: sources})
	case string(core.ModeSemantical):
		env, err = a.client.SemanticalSearch(ticket.Context(), client.SearchParams{Term: term, Sources: sources, Model: a.cfg.Model})
	default:
		a.flights.End(ticket)
		return fmt.Errorf("unknown search mode %q", mode)
	}
	a.flights.End(ticket)
	if err != nil {
		return classifyErr(ticket, err)
	}

	downloadTicket := a.flights.Begin(ctx)
	defer a.flights.End(downloadTicket)

	exporter := export.New(a.client)
	path, err := exporter.ExportToDir(downloadTicket.Context(), outputDir, format,
		env.Results, term, string(env.SearchType))
	if err != nil {
		return classifyErr(downloadTicket, err)
	}

	fmt.Printf("Exported %d results to %s\n", len(env.Results), path)
	return nil
}
