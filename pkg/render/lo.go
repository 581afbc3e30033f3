package render

import (
	"html/template"

	"github.com/consai/consai/pkg/core"
)

// loTemplate renders a Léxico de Ortopensatas paragraph: rendered body
// first, then the badges for every populated field.
const loTemplate = `<div class="displaybox-item">
<div class="displaybox-text markdown-content">{{.Body}}</div>
{{if .Source}}<span class="metadata-badge estilo1"><strong>{{.Source}}</strong></span>{{end -}}
{{if .Title}}<span class="metadata-badge estilo2"><strong>{{.Title}}</strong></span>{{end -}}
{{if .Number}}<span class="metadata-badge estilo3">#{{.Number}}</span>{{end -}}
{{if scored .Score}}<span class="metadata-badge estilo4">@{{formatScore .Score}}</span>{{end}}
</div>`

type loView struct {
	Body   template.HTML
	Source string
	Title  string
	Number string
	Score  float64
}

// LOFormatter formats paragraphs from the Léxico de Ortopensatas.
type LOFormatter struct {
	tmpl *template.Template
}

func NewLOFormatter() *LOFormatter {
	return &LOFormatter{tmpl: mustTemplate("lo", loTemplate)}
}

func (f *LOFormatter) Format(item *core.Result) template.HTML {
	body := item.Body()
	// A positive score means the item came from a relevance-ranked search
	// rather than an exact lexical match; ranked items carry their title
	// bold-emphasized at the head of the body.
	if item.Score > 0 && item.Title != "" {
		body = "**" + item.Title + "**. " + body
	}
	return execute(f.tmpl, loView{
		Body:   Markdown(body),
		Source: item.Source,
		Title:  item.Title,
		Number: item.Number.String(),
		Score:  item.Score,
	})
}

func (f *LOFormatter) CanFormat(source string) bool {
	return core.Collection(source) == core.CollectionLO
}

func (f *LOFormatter) Collection() core.Collection { return core.CollectionLO }
