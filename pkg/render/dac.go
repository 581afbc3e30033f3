package render

import (
	"html/template"

	"github.com/consai/consai/pkg/core"
)

const dacTemplate = `<div class="displaybox-item">
<div class="displaybox-text markdown-content">{{.Body}}</div>
{{if .Source}}<span class="metadata-badge estilo1"><strong>{{.Source}}</strong></span>{{end -}}
{{if .Title}}<span class="metadata-badge estilo2"><strong>{{.Title}}</strong></span>{{end -}}
{{if .Argumento}}<span class="metadata-badge estilo5">{{.Argumento}}</span>{{end -}}
{{if .Section}}<span class="metadata-badge estilo6"><em>{{.Section}}</em></span>{{end -}}
{{if .Number}}<span class="metadata-badge estilo4">#{{.Number}}</span>{{end -}}
{{if scored .Score}}<span class="metadata-badge estilo9">@{{formatScore .Score}}</span>{{end}}
</div>`

type dacView struct {
	Body      template.HTML
	Source    string
	Title     string
	Argumento string
	Section   string
	Number    string
	Score     float64
}

// DACFormatter formats paragraphs from the Dicionário de Argumentos da
// Conscienciologia, which carry argumento and section extras.
type DACFormatter struct {
	tmpl *template.Template
}

func NewDACFormatter() *DACFormatter {
	return &DACFormatter{tmpl: mustTemplate("dac", dacTemplate)}
}

func (f *DACFormatter) Format(item *core.Result) template.HTML {
	return execute(f.tmpl, dacView{
		Body:      Markdown(item.Body()),
		Source:    item.Source,
		Title:     item.Title,
		Argumento: item.Argumento,
		Section:   item.Section,
		Number:    item.Number.String(),
		Score:     item.Score,
	})
}

func (f *DACFormatter) CanFormat(source string) bool {
	return core.Collection(source) == core.CollectionDAC
}

func (f *DACFormatter) Collection() core.Collection { return core.CollectionDAC }
