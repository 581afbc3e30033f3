package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/consai/consai/pkg/client"
	"github.com/consai/consai/pkg/config"
	"github.com/consai/consai/pkg/core"
	"github.com/consai/consai/pkg/flight"
	"github.com/consai/consai/pkg/session"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Define styles using lipgloss
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			Margin(1, 0, 1, 0)

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("32")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	refStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Align(lipgloss.Right)
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	out, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// app bundles everything a command needs: config, API client, session
// store and a flight controller for the invocation.
type app struct {
	cfg     *config.Config
	client  *client.Client
	session *session.Store
	flights *flight.Controller
}

func loadApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	stateDir, err := config.GetStateDir()
	if err != nil {
		return nil, fmt.Errorf("locating state directory: %w", err)
	}
	store, err := session.NewStore(filepath.Join(stateDir, "session.toml"))
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	return &app{
		cfg:     cfg,
		client:  client.New(cfg.BaseURL),
		session: store,
		flights: flight.NewController(cfg.Timeout.Duration),
	}, nil
}

// requireTerm rejects empty search terms before any request goes out.
func requireTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", fmt.Errorf("please enter a search term")
	}
	return term, nil
}

// printEnvelope writes a result set to the terminal: summary first, then
// groups in first-seen order or one flat score-sorted list.
func printEnvelope(env *core.Envelope, grouped bool) {
	if len(env.Results) == 0 {
		fmt.Println(noDataStyle.Render("No results to display."))
		return
	}

	var order []string
	groups := make(map[string][]*core.Result)
	for i := range env.Results {
		name := env.Results[i].DisplaySource()
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], &env.Results[i])
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Total de parágrafos encontrados: %d", len(env.Results))
	for _, name := range order {
		fmt.Fprintf(&summary, "\n%s: %d", titleCaser.String(name), len(groups[name]))
	}
	fmt.Println(summaryStyle.Render(summary.String()))

	if grouped {
		for _, name := range order {
			items := groups[name]
			fmt.Println(headerStyle.Render(fmt.Sprintf("%s (%d)", titleCaser.String(name), len(items))))
			for _, item := range items {
				printResult(item)
			}
		}
		return
	}

	flat := make([]*core.Result, 0, len(env.Results))
	for i := range env.Results {
		flat = append(flat, &env.Results[i])
	}
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Score > flat[j].Score
	})
	fmt.Println(headerStyle.Render(fmt.Sprintf("Resultados ordenados (%d)", len(flat))))
	for _, item := range flat {
		printResult(item)
	}
}

// printResult writes one item: ranked items carry the title at the head
// of the body, metadata goes on a dim trailer line.
func printResult(item *core.Result) {
	body := item.Body()
	if item.Score > 0 && item.Title != "" {
		body = "**" + item.Title + "**. " + body
	}

	var meta []string
	add := func(s string) {
		if s != "" {
			meta = append(meta, s)
		}
	}
	add(item.SourceName())
	if item.Score == 0 {
		add(item.Title)
	}
	add(item.Argumento)
	if item.Section != "" {
		add("§ " + item.Section)
	}
	if item.Folha.String() != "" {
		add("(" + item.Folha.String() + ")")
	}
	if item.Number.String() != "" {
		add("#" + item.Number.String())
	}
	if item.Score > 0 {
		add(fmt.Sprintf("@%.2f", item.Score))
	}

	block := renderMarkdown(body)
	if len(meta) > 0 {
		block += "\n" + metaStyle.Render(strings.Join(meta, "  ●  "))
	}
	fmt.Println(blockStyle.Render(block))
}

// printAnswer writes one LLM exchange with its metadata trailer.
func printAnswer(ans *core.ChatAnswer) {
	block := renderMarkdown(ans.Text)
	var meta []string
	if ans.Citations != "" {
		meta = append(meta, "Citations: "+ans.Citations)
	}
	if ans.Model != "" {
		meta = append(meta, "Model: "+ans.Model)
	}
	if ans.Temperature != 0 {
		meta = append(meta, fmt.Sprintf("Temperature: %g", ans.Temperature))
	}
	if ans.TotalTokensUsed != 0 {
		meta = append(meta, fmt.Sprintf("Tokens: %d", ans.TotalTokensUsed))
	}
	if len(meta) > 0 {
		block += "\n" + metaStyle.Render(strings.Join(meta, "  ●  "))
	}
	fmt.Println(blockStyle.Render(block))
}

// classifyErr maps transport failures to the messages shown to users.
func classifyErr(t *flight.Ticket, err error) error {
	switch {
	case flight.IsTimeout(err):
		return fmt.Errorf("request timed out")
	case flight.IsSuperseded(t, err):
		return fmt.Errorf("request superseded")
	default:
		return err
	}
}
