package core

import (
	"encoding/json"
	"strings"
)

// FlexString decodes JSON values that arrive either as strings or as bare
// numbers. Paragraph, verbete and folha numbers vary per collection export.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Result is one item of a result set. The shape is polymorphic: each
// collection exporter populates a slightly different subset of fields,
// and the body text can live under any of four keys. The raw decoded
// fields are retained so the metadata extractor and the export endpoint
// see exactly what the backend sent.
type Result struct {
	Title  string     `json:"title,omitempty"`
	Number FlexString `json:"number,omitempty"`
	Score  float64    `json:"score,omitempty"`

	Markdown    string `json:"markdown,omitempty"`
	ContentText string `json:"content_text,omitempty"`
	Text        string `json:"text,omitempty"`
	PageContent string `json:"page_content,omitempty"`

	Source string `json:"source,omitempty"`
	File   string `json:"file,omitempty"`
	Book   string `json:"book,omitempty"`

	// DAC extras.
	Argumento string `json:"argumento,omitempty"`
	Section   string `json:"section,omitempty"`

	// CCG extras.
	Folha FlexString `json:"folha,omitempty"`

	// EC family extras.
	Area   string `json:"area,omitempty"`
	Theme  string `json:"theme,omitempty"`
	Author string `json:"author,omitempty"`
	Sigla  string `json:"sigla,omitempty"`
	Date   string `json:"date,omitempty"`
	Link   string `json:"link,omitempty"`

	raw map[string]any
}

// resultAlias avoids UnmarshalJSON recursion.
type resultAlias Result

func (r *Result) UnmarshalJSON(data []byte) error {
	var a resultAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]any
	// Best effort: a decode failure here only loses the raw view.
	_ = json.Unmarshal(data, &raw)
	*r = Result(a)
	r.raw = raw
	return nil
}

// MarshalJSON re-emits the raw backend fields when available so that
// round-tripping results (for instance into the export endpoint) does not
// drop collection-specific keys this struct does not model.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return json.Marshal(r.raw)
	}
	return json.Marshal(resultAlias(r))
}

// Body returns the renderable text of the item: the first non-empty of
// markdown, content_text, text and page_content. An item with none of
// them renders as empty text rather than failing.
func (r *Result) Body() string {
	for _, s := range []string{r.Markdown, r.ContentText, r.Text, r.PageContent} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SourceName is the collection hint used for formatter dispatch:
// source, then file, then book, defaulting to "Unknown".
func (r *Result) SourceName() string {
	for _, s := range []string{r.Source, r.File, r.Book} {
		if s != "" {
			return s
		}
	}
	return "Unknown"
}

// GroupSource is the raw value grouping is keyed on: book, then source,
// then file. Note the precedence differs from SourceName on purpose; it
// matches how the backend labels grouped listings.
func (r *Result) GroupSource() string {
	for _, s := range []string{r.Book, r.Source, r.File} {
		if s != "" {
			return s
		}
	}
	return ""
}

// DisplaySource is GroupSource normalized for display (directories and
// markdown extensions stripped).
func (r *Result) DisplaySource() string {
	return NormalizeSourceName(r.GroupSource())
}

// Fields exposes the item as a loosely-typed record for the metadata
// extractor. Items decoded from the backend return the raw JSON fields;
// programmatically built items synthesize the map from the typed fields.
func (r *Result) Fields() map[string]any {
	if r.raw != nil {
		return r.raw
	}
	m := make(map[string]any)
	put := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	put("title", r.Title)
	put("number", r.Number.String())
	if r.Score != 0 {
		m["score"] = r.Score
	}
	put("markdown", r.Markdown)
	put("content_text", r.ContentText)
	put("text", r.Text)
	put("page_content", r.PageContent)
	put("source", r.Source)
	put("file", r.File)
	put("book", r.Book)
	put("argumento", r.Argumento)
	put("section", r.Section)
	put("folha", r.Folha.String())
	put("area", r.Area)
	put("theme", r.Theme)
	put("author", r.Author)
	put("sigla", r.Sigla)
	put("date", r.Date)
	put("link", r.Link)
	return m
}

// Envelope is the canonical wrapper around one result set.
type Envelope struct {
	Count      int      `json:"count"`
	SearchType Mode     `json:"search_type"`
	Term       string   `json:"term"`
	Results    []Result `json:"results"`
}

// EnsureResults guarantees Results is non-nil. Renderers and the export
// path treat an absent or malformed results field as an empty set.
func (e *Envelope) EnsureResults() {
	if e.Results == nil {
		e.Results = []Result{}
	}
}

// Truncate limits the result list to at most n items for display. The
// count field keeps the backend total.
func (e *Envelope) Truncate(n int) {
	if n > 0 && len(e.Results) > n {
		e.Results = e.Results[:n]
	}
}
