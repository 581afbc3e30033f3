package render

import (
	"strings"
	"testing"

	"github.com/consai/consai/pkg/core"
)

func searchEnvelope(results ...core.Result) *core.Envelope {
	return &core.Envelope{
		Count:      len(results),
		SearchType: core.ModeLexical,
		Term:       "test",
		Results:    results,
	}
}

func TestRenderSearchGrouped(t *testing.T) {
	r := New(nil)
	env := searchEnvelope(
		core.Result{Book: "books/DAC.md", Source: "DAC", Markdown: "dac um"},
		core.Result{Book: "books/LO.md", Source: "LO", Markdown: "lo um"},
		core.Result{Book: "books/DAC.md", Source: "DAC", Markdown: "dac dois"},
		core.Result{Book: "books/LO.md", Source: "LO", Markdown: "lo dois"},
	)

	var sb strings.Builder
	if err := r.Render(&sb, core.ModeLexical, env, Options{Grouped: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()

	// Groups keep first-seen order: DAC before LO.
	dacIdx := strings.Index(out, `<span class="group-name">DAC</span>`)
	loIdx := strings.Index(out, `<span class="group-name">LO</span>`)
	if dacIdx == -1 || loIdx == -1 {
		t.Fatalf("missing group headers:\n%s", out)
	}
	if dacIdx > loIdx {
		t.Errorf("groups out of first-seen order (DAC at %d, LO at %d)", dacIdx, loIdx)
	}

	// Items inside a group keep their original order.
	if strings.Index(out, "dac um") > strings.Index(out, "dac dois") {
		t.Error("items reordered inside group")
	}

	if !strings.Contains(out, "Total de parágrafos encontrados: 4") {
		t.Errorf("missing summary total:\n%s", out)
	}
	if !strings.Contains(out, "<strong>DAC</strong>: 2 resultados") {
		t.Errorf("missing per-group count:\n%s", out)
	}
}

func TestRenderSearchFlatSortsByScore(t *testing.T) {
	r := New(nil)
	env := searchEnvelope(
		core.Result{Source: "LO", Score: 0.2, Markdown: "baixo"},
		core.Result{Source: "LO", Score: 0.9, Markdown: "alto"},
		core.Result{Source: "LO", Markdown: "sem score"},
		core.Result{Source: "LO", Score: 0.5, Markdown: "medio"},
	)

	var sb strings.Builder
	if err := r.Render(&sb, core.ModeSemantical, env, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()

	order := []string{"alto", "medio", "baixo", "sem score"}
	last := -1
	for _, item := range order {
		idx := strings.Index(out, item)
		if idx == -1 {
			t.Fatalf("missing item %q:\n%s", item, out)
		}
		if idx < last {
			t.Errorf("item %q out of descending-score order", item)
		}
		last = idx
	}

	if !strings.Contains(out, "Resultados ordenados:") {
		t.Errorf("missing flat header:\n%s", out)
	}
}

func TestRenderSearchEmpty(t *testing.T) {
	r := New(nil)

	var sb strings.Builder
	if err := r.Render(&sb, core.ModeLexical, searchEnvelope(), Options{Grouped: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()

	if n := strings.Count(out, "No results to display."); n != 1 {
		t.Errorf("placeholder rendered %d times, want 1:\n%s", n, out)
	}
	if strings.Contains(out, "Total de parágrafos") {
		t.Errorf("empty set should not render a summary:\n%s", out)
	}
}

func TestRenderUnknownMode(t *testing.T) {
	r := New(nil)

	var sb strings.Builder
	if err := r.Render(&sb, core.Mode("nonsense"), searchEnvelope(), Options{}); err != nil {
		t.Fatalf("unknown mode should not error: %v", err)
	}
	if sb.Len() != 0 {
		t.Errorf("unknown mode should render nothing, got %q", sb.String())
	}
}

func TestRenderChat(t *testing.T) {
	r := New(nil)
	ans := &core.ChatAnswer{
		Text:            "A **resposta** do modelo.",
		Citations:       "LO: 5, 12 ; DAC: 3",
		TotalTokensUsed: 1234,
		Model:           "gpt-5-nano",
		Temperature:     0.3,
	}

	var sb strings.Builder
	if err := r.Render(&sb, core.ModeRagbot, ans, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"<strong>resposta</strong>",
		"Citations: LO: 5, 12 ; DAC: 3",
		"Model: gpt-5-nano",
		"Temperature: 0.3",
		"Tokens: 1234",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderVerbetopedia(t *testing.T) {
	r := New(nil)
	env := &core.Envelope{
		SearchType: core.ModeVerbetopedia,
		Results: []core.Result{
			{Source: "EC", Title: "Verbete B", Area: "Area B", Author: "Autora B", Number: "2", Date: "2010", Score: 0.4, Markdown: "segundo"},
			{Source: "EC", Title: "Verbete A", Area: "Area A", Author: "Autor A", Number: "1", Date: "2005", Score: 0.8, Markdown: "primeiro"},
		},
	}

	var sb strings.Builder
	if err := r.Render(&sb, core.ModeVerbetopedia, env, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "Enciclopédia da Conscienciologia") {
		t.Errorf("missing fixed group label:\n%s", out)
	}
	if !strings.Contains(out, "2 resultados") {
		t.Errorf("missing group count:\n%s", out)
	}

	// Descending score: Verbete A (0.8) before Verbete B (0.4).
	aIdx := strings.Index(out, "Verbete A")
	bIdx := strings.Index(out, "Verbete B")
	if aIdx == -1 || bIdx == -1 || aIdx > bIdx {
		t.Errorf("items out of descending-score order (A at %d, B at %d)", aIdx, bIdx)
	}

	for _, want := range []string{
		"(Area A)",
		"<em>Autor A</em>",
		"#1",
		"2005",
		"Score: 0.80",
		"Score: 0.40",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderVerbetopediaEmpty(t *testing.T) {
	r := New(nil)
	env := &core.Envelope{SearchType: core.ModeVerbetopedia, Results: []core.Result{}}

	var sb strings.Builder
	if err := r.Render(&sb, core.ModeVerbetopedia, env, Options{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(sb.String(), "No results to display.") {
		t.Errorf("missing placeholder:\n%s", sb.String())
	}
}

func TestRenderTitleAndSimple(t *testing.T) {
	r := New(nil)

	var sb strings.Builder
	if err := r.Render(&sb, core.ModeTitle, "Busca: **evolução**", Options{}); err != nil {
		t.Fatalf("render title: %v", err)
	}
	if !strings.Contains(sb.String(), "<strong>evolução</strong>") {
		t.Errorf("title not rendered as markdown:\n%s", sb.String())
	}

	sb.Reset()
	p := &core.Pensata{Text: "Pensata do dia.", Ref: "LO 2019, p. 44"}
	if err := r.Render(&sb, core.ModeSimple, p, Options{}); err != nil {
		t.Fatalf("render simple: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "Pensata do dia.") {
		t.Errorf("missing pensata text:\n%s", out)
	}
	if !strings.Contains(out, "[LO 2019, p. 44]") {
		t.Errorf("missing bracketed ref:\n%s", out)
	}

	sb.Reset()
	if err := r.Render(&sb, core.ModeSimple, &core.Pensata{Text: "Sem ref."}, Options{}); err != nil {
		t.Fatalf("render simple: %v", err)
	}
	if strings.Contains(sb.String(), "simple-ref") {
		t.Errorf("ref block rendered for refless pensata:\n%s", sb.String())
	}
}

func TestRenderWrongPayloadType(t *testing.T) {
	r := New(nil)
	var sb strings.Builder
	if err := r.Render(&sb, core.ModeLexical, "not an envelope", Options{}); err == nil {
		t.Error("expected error for wrong payload type")
	}
	if err := r.Render(&sb, core.ModeRagbot, searchEnvelope(), Options{}); err == nil {
		t.Error("expected error for wrong chat payload type")
	}
}
