package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/consai/consai/pkg/client"
	"github.com/urfave/cli/v3"
)

// RagbotCommand creates the ragbot command
func RagbotCommand() *cli.Command {
	return &cli.Command{
		Name:      "ragbot",
		Usage:     "Ask the Oracle a question over the collections",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "new-conversation",
				Usage: "Start a fresh conversation before asking",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.Join(c.Args().Slice(), " ")
			return runRagbot(ctx, c.String("config"), question, c.Bool("new-conversation"))
		},
	}
}

func runRagbot(ctx context.Context, configPath, question string, newConversation bool) error {
	question, err := requireTerm(question)
	if err != nil {
		return err
	}

	a, err := loadApp(configPath)
	if err != nil {
		return err
	}

	if newConversation {
		old, _, err := a.session.Reset()
		if err != nil {
			return fmt.Errorf("resetting conversation: %w", err)
		}
		if old != "" {
			a.client.ResetConversation(ctx, old)
		}
	}

	chatID, err := a.session.GetOrCreate()
	if err != nil {
		return fmt.Errorf("opening chat session: %w", err)
	}

	ticket := a.flights.Begin(ctx)
	defer a.flights.End(ticket)

	ans, err := a.client.LLMQuery(ticket.Context(), client.LLMParams{
		Query:            question,
		Model:            a.cfg.Model,
		Temperature:      a.cfg.Temperature,
		VectorStoreNames: a.cfg.VectorStore,
		Instructions:     a.cfg.Instruction("ragbot"),
		UseSession:       true,
		ChatID:           chatID,
	})
	if err != nil {
		return classifyErr(ticket, err)
	}
	if err := a.session.Adopt(ans.ChatID); err != nil {
		return fmt.Errorf("saving chat session: %w", err)
	}

	fmt.Println(titleStyle.Render("Cons.AI Oracle"))
	printAnswer(ans)
	return nil
}
