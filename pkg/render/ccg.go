package render

import (
	"html/template"

	"github.com/consai/consai/pkg/core"
)

const ccgTemplate = `<div class="displaybox-item">
<div class="displaybox-text markdown-content">{{.Body}}</div>
{{if .Source}}<span class="metadata-badge estilo1"><strong>{{.Source}}</strong></span>{{end -}}
{{if .Title}}<span class="metadata-badge estilo2"><strong>{{.Title}}</strong></span>{{end -}}
{{if .Folha}}<span class="metadata-badge estilo4">({{.Folha}})</span>{{end -}}
{{if .Number}}<span class="metadata-badge estilo3">#{{.Number}}</span>{{end -}}
{{if scored .Score}}<span class="metadata-badge estilo9">@{{formatScore .Score}}</span>{{end}}
</div>`

type ccgView struct {
	Body   template.HTML
	Source string
	Title  string
	Folha  string
	Number string
	Score  float64
}

// CCGFormatter formats questions from the Conscienciograma, whose items
// carry a folha (sheet) reference.
type CCGFormatter struct {
	tmpl *template.Template
}

func NewCCGFormatter() *CCGFormatter {
	return &CCGFormatter{tmpl: mustTemplate("ccg", ccgTemplate)}
}

func (f *CCGFormatter) Format(item *core.Result) template.HTML {
	return execute(f.tmpl, ccgView{
		Body:   Markdown(item.Body()),
		Source: item.Source,
		Title:  item.Title,
		Folha:  item.Folha.String(),
		Number: item.Number.String(),
		Score:  item.Score,
	})
}

func (f *CCGFormatter) CanFormat(source string) bool {
	return core.Collection(source) == core.CollectionCCG
}

func (f *CCGFormatter) Collection() core.Collection { return core.CollectionCCG }
