// Package export turns the last result set into a downloadable
// document. The backend renders the file; this side keeps the state of
// the last search, validates the request and decides the filename.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/consai/consai/pkg/client"
	"github.com/consai/consai/pkg/core"
)

// Formats the backend can render.
const (
	FormatDocx     = "docx"
	FormatPDF      = "pdf"
	FormatMarkdown = "markdown"
)

const maxFilenameTerm = 50

// ErrNoResults is returned when an export is requested before any
// search produced results.
var ErrNoResults = fmt.Errorf("export: no results to download")

// ErrUnknownFormat is returned for formats the backend cannot render.
var ErrUnknownFormat = fmt.Errorf("export: unknown format")

func validFormat(format string) bool {
	switch format {
	case FormatDocx, FormatPDF, FormatMarkdown:
		return true
	}
	return false
}

var (
	unsafeRe = regexp.MustCompile(`[^\w\s-]`)
	spacesRe = regexp.MustCompile(`\s+`)
)

// SafeFilename builds a filesystem-safe filename from the search term:
// special characters removed, spaces dashed, lowercased and capped.
func SafeFilename(term, format string) string {
	safe := strings.TrimSpace(term)
	safe = unsafeRe.ReplaceAllString(safe, "")
	safe = spacesRe.ReplaceAllString(safe, "-")
	safe = strings.ToLower(safe)
	if len(safe) > maxFilenameTerm {
		safe = safe[:maxFilenameTerm]
	}
	if safe == "" {
		safe = "results"
	}
	return safe + "." + format
}

// State remembers the last displayed result set so an export can follow
// a search without re-querying. Safe for concurrent use.
type State struct {
	mu         sync.Mutex
	results    []core.Result
	term       string
	searchType string
}

// Update replaces the remembered result set.
func (s *State) Update(results []core.Result, term, searchType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
	s.term = term
	s.searchType = searchType
}

// Snapshot returns the remembered set, or ErrNoResults when empty.
func (s *State) Snapshot() ([]core.Result, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return nil, "", "", ErrNoResults
	}
	out := make([]core.Result, len(s.results))
	copy(out, s.results)
	return out, s.term, s.searchType, nil
}

// Clear drops the remembered set.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.term = ""
	s.searchType = ""
}

// Exporter drives the backend download endpoint.
type Exporter struct {
	client *client.Client
}

func New(c *client.Client) *Exporter {
	return &Exporter{client: c}
}

// Export renders the results into the given format and returns the
// document. The filename prefers the backend's Content-Disposition and
// falls back to the sanitized term.
func (e *Exporter) Export(ctx context.Context, format string, results []core.Result, term, searchType string) (*client.DownloadResult, error) {
	if !validFormat(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	res, err := e.client.Download(ctx, client.DownloadRequest{
		Format:  format,
		Results: results,
		Term:    term,
		Type:    searchType,
	})
	if err != nil {
		return nil, err
	}
	if res.Filename == "" {
		res.Filename = SafeFilename(term, format)
	}
	return res, nil
}

// ExportToDir exports and writes the document under dir, returning the
// full path written.
func (e *Exporter) ExportToDir(ctx context.Context, dir, format string, results []core.Result, term, searchType string) (string, error) {
	res, err := e.Export(ctx, format, results, term, searchType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(res.Filename))
	if err := os.WriteFile(path, res.Data, 0644); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return path, nil
}
