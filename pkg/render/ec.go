package render

import (
	"html/template"

	"github.com/consai/consai/pkg/core"
)

const ecTemplate = `<div class="displaybox-item">
<div class="displaybox-text markdown-content">{{.Body}}</div>
<span class="metadata-badge estilo1"><strong>EC</strong></span>
{{- if .Title}}<span class="metadata-badge estilo2"><strong>{{.Title}}</strong></span>{{end -}}
{{if .Area}}<span class="metadata-badge estilo4"><em>{{.Area}}</em></span>{{end -}}
{{if .Number}}<span class="metadata-badge estilo3">#{{.Number}}</span>{{end -}}
{{if .Theme}}<span class="metadata-badge estilo5">{{.Theme}}</span>{{end -}}
{{if .Author}}<span class="metadata-badge estilo6">{{.Author}}</span>{{end -}}
{{if .Date}}<span class="metadata-badge estilo7">{{.Date}}</span>{{end -}}
{{if scored .Score}}<span class="metadata-badge estilo9">@{{formatScore .Score}}</span>{{end}}
</div>`

type ecView struct {
	Body   template.HTML
	Title  string
	Area   string
	Number string
	Theme  string
	Author string
	Date   string
	Score  float64
}

// ECFormatter formats verbetes from the Enciclopédia da Conscienciologia.
// It claims every identifier of the EC family and always labels the
// source badge "EC" regardless of which alias produced the item.
type ECFormatter struct {
	tmpl *template.Template
}

func NewECFormatter() *ECFormatter {
	return &ECFormatter{tmpl: mustTemplate("ec", ecTemplate)}
}

func (f *ECFormatter) Format(item *core.Result) template.HTML {
	return execute(f.tmpl, ecView{
		Body:   Markdown(item.Body()),
		Title:  item.Title,
		Area:   item.Area,
		Number: item.Number.String(),
		Theme:  item.Theme,
		Author: item.Author,
		Date:   item.Date,
		Score:  item.Score,
	})
}

func (f *ECFormatter) CanFormat(source string) bool {
	return core.Collection(source).IsEncyclopedia()
}

func (f *ECFormatter) Collection() core.Collection { return core.CollectionEC }
