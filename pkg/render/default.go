package render

import (
	"html/template"

	"github.com/consai/consai/pkg/core"
)

// defaultTemplate is the fallback fragment used when no collection
// formatter claims an item. Only source, number and score make badges;
// the title, when present on a ranked item, is folded into the body.
const defaultTemplate = `<div class="displaybox-item">
<div class="displaybox-text markdown-content">{{.Body}}</div>
{{if .Source}}<span class="metadata-badge estilo1"><strong>{{.Source}}</strong></span>{{end -}}
{{if .Number}}<span class="metadata-badge estilo3">#{{.Number}}</span>{{end -}}
{{if scored .Score}}<span class="metadata-badge estilo4">@{{formatScore .Score}}</span>{{end}}
</div>`

type defaultView struct {
	Body   template.HTML
	Source string
	Number string
	Score  float64
}

// DefaultFormatter handles items from unrecognized collections.
type DefaultFormatter struct {
	tmpl *template.Template
}

func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{tmpl: mustTemplate("default", defaultTemplate)}
}

func (f *DefaultFormatter) Format(item *core.Result) template.HTML {
	body := item.Body()
	if item.Score > 0 && item.Title != "" {
		body = "**" + item.Title + "**. " + body
	}
	return execute(f.tmpl, defaultView{
		Body:   Markdown(body),
		Source: item.Source,
		Number: item.Number.String(),
		Score:  item.Score,
	})
}

// CanFormat always claims the item (catch-all fallback).
func (f *DefaultFormatter) CanFormat(source string) bool { return true }

func (f *DefaultFormatter) Collection() core.Collection { return "" }
