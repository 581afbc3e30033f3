package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/consai/consai/pkg/client"
	"github.com/consai/consai/pkg/core"
	"github.com/urfave/cli/v3"
)

// VerbetopediaCommand creates the verbetopedia command
func VerbetopediaCommand() *cli.Command {
	return &cli.Command{
		Name:      "verbetopedia",
		Usage:     "Find related verbetes in the Enciclopédia da Conscienciologia",
		ArgsUsage: "<term>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-synthesis",
				Usage: "Skip the LLM synthesis step and search the term directly",
				Value: false,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (0 uses the configured default)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			term := strings.Join(c.Args().Slice(), " ")
			return runVerbetopedia(ctx, c.String("config"), term, !c.Bool("no-synthesis"), int(c.Int("limit")))
		},
	}
}

func runVerbetopedia(ctx context.Context, configPath, term string, synthesis bool, limit int) error {
	term, err := requireTerm(term)
	if err != nil {
		return err
	}

	a, err := loadApp(configPath)
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = a.cfg.MaxResultsDisplay
	}

	searchTerm := term
	if synthesis {
		chatID, err := a.session.GetOrCreate()
		if err != nil {
			return fmt.Errorf("opening chat session: %w", err)
		}

		ticket := a.flights.Begin(ctx)
		ans, err := a.client.LLMQuery(ticket.Context(), client.LLMParams{
			Query:         "**TEXTO DE ENTRADA** :  " + term + ".",
			Model:         a.cfg.Model,
			Temperature:   a.cfg.Temperature,
			VectorStoreID: a.cfg.VectorStore,
			Instructions:  a.cfg.Instruction("verbetopedia"),
			UseSession:    true,
			ChatID:        chatID,
		})
		a.flights.End(ticket)
		if err != nil {
			return classifyErr(ticket, err)
		}
		if err := a.session.Adopt(ans.ChatID); err != nil {
			return fmt.Errorf("saving chat session: %w", err)
		}

		fmt.Println(blockStyle.Render(renderMarkdown(ans.Text)))

		newTerm := strings.TrimSpace(ans.Text)
		if newTerm == "" {
			fmt.Println(noDataStyle.Render("Sem síntese suficiente para buscar semelhanças."))
			return nil
		}
		searchTerm = term + ": " + newTerm + "."
	}

	ticket := a.flights.Begin(ctx)
	defer a.flights.End(ticket)

	env, err := a.client.SemanticalSearch(ticket.Context(), client.SearchParams{
		Term:    searchTerm,
		Sources: []string{string(core.CollectionEC)},
		Model:   a.cfg.Model,
	})
	if err != nil {
		return classifyErr(ticket, err)
	}
	env.Truncate(limit)

	fmt.Println(titleStyle.Render(fmt.Sprintf("Verbetopedia  ●  %s", term)))
	printVerbetes(env)
	return nil
}

// printVerbetes writes the encyclopedia listing: descending score, one
// composed header line per verbete.
func printVerbetes(env *core.Envelope) {
	if len(env.Results) == 0 {
		fmt.Println(noDataStyle.Render("No results to display."))
		return
	}

	items := make([]*core.Result, 0, len(env.Results))
	for i := range env.Results {
		items = append(items, &env.Results[i])
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	fmt.Println(headerStyle.Render(fmt.Sprintf("Enciclopédia da Conscienciologia (%d)", len(items))))
	for _, item := range items {
		var header []string
		add := func(s string) {
			if s != "" {
				header = append(header, s)
			}
		}
		add(item.Title)
		if item.Area != "" {
			add("(" + item.Area + ")")
		}
		add(item.Author)
		if item.Number.String() != "" {
			add("#" + item.Number.String())
		}
		add(item.Date)

		block := metaStyle.Render(strings.Join(header, "  ●  "))
		block += "\n" + renderMarkdown(item.Body())
		if item.Score > 0 {
			block += "\n" + metaStyle.Render(fmt.Sprintf("Score: %.2f", item.Score))
		}
		fmt.Println(blockStyle.Render(block))
	}
}
