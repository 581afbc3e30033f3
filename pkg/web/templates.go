package web

import (
	"html/template"
	"net/http"

	"github.com/consai/consai/pkg/version"
)

// pageData feeds the page shell. Results is the pre-rendered fragment
// produced by the render pipeline; everything else is escaped by the
// template.
type pageData struct {
	Title      string
	Term       string
	Mode       string
	Error      string
	Results    template.HTML
	CanExport  bool
	SearchType string
	Version    string
}

func trusted(s string) template.HTML { return template.HTML(s) }

const pageShell = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 0 auto; max-width: 56rem; padding: 1rem; color: #222; }
form.search { display: flex; gap: .5rem; flex-wrap: wrap; margin-bottom: 1rem; }
form.search input[type=text] { flex: 1; padding: .5rem; }
.error { color: #a00; font-weight: bold; }
.search-summary { border: 2px solid #277; padding: .5rem 1rem; margin-bottom: 1rem; }
.group-header { display: flex; justify-content: space-between; font-weight: bold; margin-top: 1rem; }
.displaybox-item, .displaybox-container { border: 1px solid #ccc; border-radius: .5rem; padding: .75rem; margin: .5rem 0; }
.metadata-badge { display: inline-block; font-size: .8rem; background: #eee; border-radius: .25rem; padding: .1rem .4rem; margin-right: .25rem; }
.simple-ref { text-align: right; font-style: italic; color: #557; }
.title-box { font-size: 1.2rem; font-weight: bold; margin-top: 1rem; }
footer { margin-top: 2rem; color: #888; font-size: .8rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form class="search" method="post" action="/search">
<input type="text" name="term" placeholder="Termo de busca" value="{{.Term}}">
<select name="mode">
<option value="lexical"{{if eq .Mode "lexical"}} selected{{end}}>Lexical</option>
<option value="semantical"{{if eq .Mode "semantical"}} selected{{end}}>Semantical</option>
</select>
<button type="submit">Search</button>
<button type="submit" formaction="/chat">Ask the Oracle</button>
<button type="submit" formaction="/verbetopedia">Verbetopedia</button>
<button type="submit" formaction="/mancia">Bibliomancia</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<div id="results">{{.Results}}</div>
{{if .CanExport}}
<form method="post" action="/export">
<input type="hidden" name="type" value="{{.SearchType}}">
<select name="format">
<option value="docx">DOCX</option>
<option value="pdf">PDF</option>
<option value="markdown">Markdown</option>
</select>
<button type="submit">Download</button>
</form>
{{end}}
<form method="post" action="/chat/reset"><button type="submit">New conversation</button></form>
<footer>consai {{.Version}}</footer>
</body>
</html>`

var pageTemplate = template.Must(template.New("page").Parse(pageShell))

func (s *Server) renderPage(w http.ResponseWriter, data pageData) {
	if data.Version == "" {
		data.Version = version.APIVersion()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Errorf("rendering page: %v", err)
	}
}
