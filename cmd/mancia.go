package cmd

import (
	"context"
	"fmt"

	"github.com/consai/consai/pkg/client"
	"github.com/urfave/cli/v3"
)

// ManciaCommand creates the mancia command
func ManciaCommand() *cli.Command {
	return &cli.Command{
		Name:  "mancia",
		Usage: "Draw a random pensata and ask the Oracle to comment on it",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-commentary",
				Usage: "Show only the pensata, skip the commentary",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runMancia(ctx, c.String("config"), !c.Bool("no-commentary"))
		},
	}
}

func runMancia(ctx context.Context, configPath string, commentary bool) error {
	a, err := loadApp(configPath)
	if err != nil {
		return err
	}

	ticket := a.flights.Begin(ctx)
	defer a.flights.End(ticket)

	pensata, err := a.client.RandomPensata(ticket.Context(), "LO")
	if err != nil {
		return classifyErr(ticket, err)
	}

	fmt.Println(titleStyle.Render("Pensata Sorteada  ●  Léxico de Ortopensatas (2a edição, 2019)"))
	block := renderMarkdown(pensata.Text)
	if pensata.Ref != "" {
		block += "\n" + refStyle.Render("["+pensata.Ref+"]")
	}
	fmt.Println(blockStyle.Render(block))

	if !commentary {
		return nil
	}

	chatID, err := a.session.GetOrCreate()
	if err != nil {
		return fmt.Errorf("opening chat session: %w", err)
	}

	// The commentary is its own request with a fresh deadline.
	a.flights.End(ticket)
	ticket = a.flights.Begin(ctx)

	ans, err := a.client.LLMQuery(ticket.Context(), client.LLMParams{
		Query:            "Comente a seguinte Pensata: " + pensata.Text,
		Model:            a.cfg.Model,
		Temperature:      a.cfg.Temperature,
		VectorStoreNames: a.cfg.VectorStore,
		Instructions:     a.cfg.Instruction("mancia"),
		UseSession:       true,
		ChatID:           chatID,
	})
	if err != nil {
		return classifyErr(ticket, err)
	}
	if err := a.session.Adopt(ans.ChatID); err != nil {
		return fmt.Errorf("saving chat session: %w", err)
	}

	fmt.Println(titleStyle.Render("Comentário"))
	printAnswer(ans)
	return nil
}
