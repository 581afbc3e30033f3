package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/consai/consai/pkg/core"
	"github.com/consai/consai/pkg/log"
	"github.com/consai/consai/pkg/metadata"
)

// pageFragments holds the mode-level layout templates. Item-level
// fragments live with their formatters; everything here is the framing
// around them: summaries, group headers, heading boxes.
const pageFragments = `
{{define "noresults"}}<div class="displaybox-container"><div class="displaybox-content">No results to display.</div></div>{{end}}

{{define "summary"}}<div class="search-summary">
<div class="summary-total"><strong>Total de parágrafos encontrados: {{.Total}}</strong></div>
{{range .Groups}}<div><strong>{{.Name}}</strong>: {{.Count}} resultado{{if ne .Count 1}}s{{end}}</div>
{{end}}</div>{{end}}

{{define "groupheader"}}<div class="group-header"><span class="group-name">{{.Name}}</span><span class="badge">{{.Count}} itens</span></div>{{end}}

{{define "flatheader"}}<div class="group-header"><h3>Resultados ordenados: <span class="badge">{{.Count}} itens</span></h3></div>{{end}}

{{define "title"}}<div class="title-box"><div class="title-text">{{.}}</div></div>{{end}}

{{define "simple"}}<div class="displaybox-container simple">
<div class="displaybox-content">
<div class="displaybox-text markdown-content">{{.Body}}{{if .Ref}}<div class="simple-ref">[{{.Ref}}]</div>{{end}}</div>
</div>
</div>{{end}}

{{define "ragbot"}}<div class="displaybox-container">
<div class="displaybox-content">
<div class="displaybox-text markdown-content">{{.Body}}</div>
<div class="metadata-container">
<span class="metadata-badge citation">Citations: {{.Citations}}</span>
<span class="metadata-badge model">Model: {{.Model}}</span>
<span class="metadata-badge temperature">Temperature: {{.Temperature}}</span>
<span class="metadata-badge tokens">Tokens: {{.Tokens}}</span>
</div>
</div>
</div>{{end}}

{{define "verbetopedia-item"}}<div class="displaybox-item">
<div class="displaybox-header"><span class="header-text"><strong>{{.Title}}</strong> ({{.Area}})  ●  <em>{{.Author}}</em>  ●  #{{.Number}}  ●  {{.Date}}</span></div>
<div class="displaybox-text"><span class="displaybox-text markdown-content">{{.Body}}</span>{{if .HasScore}}<span class="metadata-badge"><span class="rag-badge">Score: {{.Score}}</span></span>{{end}}</div>
</div>{{end}}

{{define "verbetopedia-group"}}<div class="displaybox-group">
<div class="displaybox-header"><span class="group-title">Enciclopédia da Conscienciologia</span><span class="score-badge">{{.Count}} resultado{{if ne .Count 1}}s{{end}}</span></div>
<div class="displaybox-content">{{.Content}}</div>
</div>{{end}}
`

// Renderer lays out full result sets for a container owned by the
// caller (an HTML page section or a capture buffer in tests). Dispatch
// is keyed by mode; an unknown mode is logged and skipped, never fatal.
type Renderer struct {
	formatters *FormatterRegistry
	fragments  *template.Template
	logger     *log.Logger
}

// Options tune the search listing layout.
type Options struct {
	// Grouped selects the grouped-by-source display. When false all
	// items are merged into one flat list sorted by descending score.
	Grouped bool
}

// New creates a renderer backed by the given formatter registry. A nil
// registry gets the default collection formatters.
func New(formatters *FormatterRegistry) *Renderer {
	if formatters == nil {
		formatters = DefaultFormatterRegistry()
	}
	return &Renderer{
		formatters: formatters,
		fragments:  template.Must(template.New("fragments").Parse(pageFragments)),
		logger:     log.ForComponent("render"),
	}
}

// Render writes the display fragment for data under the given mode.
// lexical and semantical share the grouped search listing; title and
// simple render degenerate single blocks; ragbot renders one chat
// answer; verbetopedia renders the fixed encyclopedia group.
func (r *Renderer) Render(w io.Writer, mode core.Mode, data any, opts Options) error {
	switch mode {
	case core.ModeLexical, core.ModeSemantical:
		env, err := asEnvelope(data)
		if err != nil {
			return err
		}
		return r.renderSearch(w, env, opts)
	case core.ModeVerbetopedia:
		env, err := asEnvelope(data)
		if err != nil {
			return err
		}
		return r.renderVerbetopedia(w, env)
	case core.ModeRagbot, core.ModeMancia:
		ans, ok := data.(*core.ChatAnswer)
		if !ok {
			return fmt.Errorf("render: %s mode needs a *core.ChatAnswer, got %T", mode, data)
		}
		return r.renderChat(w, ans)
	case core.ModeTitle:
		text, ok := data.(string)
		if !ok {
			return fmt.Errorf("render: title mode needs a string, got %T", data)
		}
		return r.fragments.ExecuteTemplate(w, "title", Markdown(text))
	case core.ModeSimple:
		p, ok := data.(*core.Pensata)
		if !ok {
			return fmt.Errorf("render: simple mode needs a *core.Pensata, got %T", data)
		}
		return r.fragments.ExecuteTemplate(w, "simple", struct {
			Body template.HTML
			Ref  string
		}{Markdown(p.Text), p.Ref})
	default:
		r.logger.Errorf("unknown search type: %s", mode)
		return nil
	}
}

func asEnvelope(data any) (*core.Envelope, error) {
	env, ok := data.(*core.Envelope)
	if !ok {
		return nil, fmt.Errorf("render: search modes need a *core.Envelope, got %T", data)
	}
	return env, nil
}

type groupCount struct {
	Name  string
	Count int
}

// renderSearch lays out a lexical/semantical result set: a summary block
// with total and per-source counts, then either per-source groups (in
// first-seen order, items in original order) or one flat list sorted by
// descending score.
func (r *Renderer) renderSearch(w io.Writer, env *core.Envelope, opts Options) error {
	results := env.Results
	if len(results) == 0 {
		return r.fragments.ExecuteTemplate(w, "noresults", nil)
	}

	// Group by normalized source name, preserving first-seen order.
	var order []string
	groups := make(map[string][]*core.Result)
	for i := range results {
		name := results[i].DisplaySource()
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], &results[i])
	}

	counts := make([]groupCount, 0, len(order))
	for _, name := range order {
		counts = append(counts, groupCount{Name: name, Count: len(groups[name])})
	}
	if err := r.fragments.ExecuteTemplate(w, "summary", struct {
		Total  int
		Groups []groupCount
	}{len(results), counts}); err != nil {
		return err
	}

	if opts.Grouped {
		for _, name := range order {
			items := groups[name]
			if err := r.fragments.ExecuteTemplate(w, "groupheader", groupCount{Name: name, Count: len(items)}); err != nil {
				return err
			}
			if _, err := io.WriteString(w, `<div class="group-content">`); err != nil {
				return err
			}
			for _, item := range items {
				if _, err := io.WriteString(w, string(r.formatters.Format(item))); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</div>`); err != nil {
				return err
			}
		}
		return nil
	}

	flat := make([]*core.Result, 0, len(results))
	for i := range results {
		flat = append(flat, &results[i])
	}
	// Missing scores sort as zero, landing ranked items first.
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Score > flat[j].Score
	})

	if err := r.fragments.ExecuteTemplate(w, "flatheader", groupCount{Count: len(flat)}); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<div class="group-content">`); err != nil {
		return err
	}
	for _, item := range flat {
		if _, err := io.WriteString(w, string(r.formatters.Format(item))); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

// renderChat renders one LLM exchange with its metadata badges. The
// badge values go through the ragbot metadata view so only whitelisted
// fields ever reach the page.
func (r *Renderer) renderChat(w io.Writer, ans *core.ChatAnswer) error {
	fields, err := answerFields(ans)
	if err != nil {
		return err
	}
	record, err := metadata.ExtractOne(fields, "ragbot")
	if err != nil {
		return err
	}
	return r.fragments.ExecuteTemplate(w, "ragbot", struct {
		Body        template.HTML
		Citations   any
		Model       any
		Temperature any
		Tokens      any
	}{
		Body:        Markdown(ans.Text),
		Citations:   record["citations"],
		Model:       record["model"],
		Temperature: record["temperature"],
		Tokens:      record["total_tokens_used"],
	})
}

func answerFields(ans *core.ChatAnswer) (map[string]any, error) {
	raw, err := json.Marshal(ans)
	if err != nil {
		return nil, fmt.Errorf("render: encoding chat answer: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("render: decoding chat answer: %w", err)
	}
	return fields, nil
}

type verbetopediaItem struct {
	Title    string
	Area     string
	Author   string
	Number   string
	Date     string
	Body     template.HTML
	HasScore bool
	Score    string
}

// renderVerbetopedia renders the encyclopedia listing: one fixed-label
// group, items sorted by descending score, each with a composed header
// line and a two-decimal score badge when the score is numeric.
func (r *Renderer) renderVerbetopedia(w io.Writer, env *core.Envelope) error {
	results := env.Results
	if len(results) == 0 {
		return r.fragments.ExecuteTemplate(w, "noresults", nil)
	}

	fields := make([]map[string]any, len(results))
	for i := range results {
		fields[i] = results[i].Fields()
	}
	records, err := metadata.ExtractMany(fields, "verbetopedia")
	if err != nil {
		return err
	}

	type scored struct {
		item   *core.Result
		record map[string]any
	}
	items := make([]scored, len(results))
	for i := range results {
		items[i] = scored{item: &results[i], record: records[i]}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].item.Score > items[j].item.Score
	})

	var content template.HTML
	for _, it := range items {
		view := verbetopediaItem{
			Title:  stringField(it.record, "title"),
			Area:   stringField(it.record, "area"),
			Author: stringField(it.record, "author"),
			Number: stringField(it.record, "number"),
			Date:   stringField(it.record, "date"),
			Body:   Markdown(it.item.Body()),
		}
		if score, ok := numberField(it.record, "score"); ok {
			view.HasScore = true
			view.Score = fmt.Sprintf("%.2f", score)
		}
		var sb strings.Builder
		if err := r.fragments.ExecuteTemplate(&sb, "verbetopedia-item", view); err != nil {
			return err
		}
		content += template.HTML(sb.String())
	}

	return r.fragments.ExecuteTemplate(w, "verbetopedia-group", struct {
		Count   int
		Content template.HTML
	}{len(items), content})
}

func stringField(record map[string]any, key string) string {
	if v, ok := record[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func numberField(record map[string]any, key string) (float64, bool) {
	switch v := record[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
