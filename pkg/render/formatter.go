package render

import (
	"html/template"
	"strconv"
	"strings"
	"sync"

	"github.com/consai/consai/pkg/core"
)

// Formatter renders one result item into a self-contained HTML fragment:
// the markdown-rendered body followed by its metadata badges. Formatters
// decide whether they can handle an item by its collection hint, the way
// block renderers claim datasource types.
type Formatter interface {
	// Format produces the trusted HTML fragment for the item.
	Format(item *core.Result) template.HTML

	// CanFormat checks whether this formatter handles the given raw
	// collection hint (item source/file/book value).
	CanFormat(source string) bool

	// Collection returns the canonical collection this formatter handles.
	Collection() core.Collection
}

// FormatterRegistry holds an ordered list of formatters plus the default
// fallback used when no collection-specific formatter claims an item.
type FormatterRegistry struct {
	mu         sync.RWMutex
	formatters []Formatter
	fallback   Formatter
}

// NewFormatterRegistry creates an empty registry with the default
// fallback formatter.
func NewFormatterRegistry() *FormatterRegistry {
	return &FormatterRegistry{fallback: NewDefaultFormatter()}
}

// DefaultFormatterRegistry returns a registry with every collection
// formatter registered: LO, DAC, CCG and the EC family.
func DefaultFormatterRegistry() *FormatterRegistry {
	reg := NewFormatterRegistry()
	reg.Register(NewLOFormatter())
	reg.Register(NewDACFormatter())
	reg.Register(NewCCGFormatter())
	reg.Register(NewECFormatter())
	return reg
}

// Register adds a formatter. Safe for concurrent use.
func (r *FormatterRegistry) Register(f Formatter) {
	if f == nil {
		return
	}
	r.mu.Lock()
	r.formatters = append(r.formatters, f)
	r.mu.Unlock()
}

// Format dispatches the item to the first formatter that claims its
// collection hint, falling back to the default formatter.
func (r *FormatterRegistry) Format(item *core.Result) template.HTML {
	if item == nil {
		return template.HTML("<!-- nil item -->")
	}

	r.mu.RLock()
	formatters := r.formatters
	fallback := r.fallback
	r.mu.RUnlock()

	source := item.SourceName()
	for _, f := range formatters {
		if f.CanFormat(source) {
			return f.Format(item)
		}
	}
	return fallback.Format(item)
}

// formatterFuncs are the helpers shared by all formatter templates.
// Badge and title values are escaped by html/template itself; only the
// pre-rendered body arrives as trusted HTML.
func formatterFuncs() template.FuncMap {
	return template.FuncMap{
		"markdown":    Markdown,
		"formatScore": FormatScore,
		"scored":      func(score float64) bool { return score > 0 },
	}
}

// FormatScore renders a relevance score the shortest way that round-trips
// (0.91 stays "0.91", 1 stays "1").
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}

// mustTemplate parses a formatter template at package init time; these
// templates are constants, so a parse failure is a programming error.
func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(formatterFuncs()).Parse(text))
}

// execute runs a fragment template, degrading to an HTML comment on
// failure so one broken item never aborts a whole result listing.
func execute(tmpl *template.Template, data any) template.HTML {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return template.HTML("<!-- formatter error: " + template.HTMLEscapeString(err.Error()) + " -->")
	}
	return template.HTML(buf.String())
}
