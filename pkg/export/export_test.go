package export

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consai/consai/pkg/client"
	"github.com/consai/consai/pkg/core"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		term   string
		format string
		want   string
	}{
		{"Evolução Consciencial", "docx", "evoluo-consciencial.docx"},
		{"  spaced   out  ", "pdf", "spaced-out.pdf"},
		{"weird/chars:here?", "docx", "weirdcharshere.docx"},
		{"", "markdown", "results.markdown"},
		{strings.Repeat("a", 80), "docx", strings.Repeat("a", 50) + ".docx"},
	}
	for _, tt := range tests {
		if got := SafeFilename(tt.term, tt.format); got != tt.want {
			t.Errorf("SafeFilename(%q, %q) = %q, want %q", tt.term, tt.format, got, tt.want)
		}
	}
}

func TestStateSnapshot(t *testing.T) {
	var s State

	if _, _, _, err := s.Snapshot(); !errors.Is(err, ErrNoResults) {
		t.Errorf("empty state should return ErrNoResults, got %v", err)
	}

	s.Update([]core.Result{{Source: "LO", Markdown: "corpo"}}, "evolução", "lexical")
	results, term, searchType, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(results) != 1 || term != "evolução" || searchType != "lexical" {
		t.Errorf("snapshot = (%d, %q, %q)", len(results), term, searchType)
	}

	s.Clear()
	if _, _, _, err := s.Snapshot(); !errors.Is(err, ErrNoResults) {
		t.Errorf("cleared state should return ErrNoResults, got %v", err)
	}
}

func TestExportValidation(t *testing.T) {
	e := New(client.New("http://unused.invalid"))

	_, err := e.Export(context.Background(), "xlsx", []core.Result{{Markdown: "x"}}, "t", "lexical")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}

	_, err = e.Export(context.Background(), FormatDocx, nil, "t", "lexical")
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestExportToDir(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="evolucao.docx"`)
		if _, err := w.Write([]byte("doc bytes")); err != nil {
			t.Fatal(err)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	e := New(client.New(srv.URL))
	path, err := e.ExportToDir(context.Background(), dir, FormatDocx,
		[]core.Result{{Source: "LO", Markdown: "corpo"}}, "evolucao", "lexical")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "evolucao.docx" {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "doc bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestExportFallbackFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("doc")); err != nil {
			t.Fatal(err)
		}
	}))
	defer srv.Close()

	e := New(client.New(srv.URL))
	res, err := e.Export(context.Background(), FormatPDF,
		[]core.Result{{Markdown: "x"}}, "My Term", "semantical")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Filename != "my-term.pdf" {
		t.Errorf("filename = %q", res.Filename)
	}
}
