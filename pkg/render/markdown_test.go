package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "plain markdown",
			input:    "Um **destaque** no texto.",
			contains: []string{"<strong>destaque</strong>"},
		},
		{
			name:     "already html is not reparsed",
			input:    "<p>Já formatado.</p>",
			contains: []string{"<p>Já formatado.</p>"},
			excludes: []string{"<p><p>"},
		},
		{
			name:     "script tags are stripped",
			input:    `texto <script>alert("x")</script> seguro`,
			excludes: []string{"<script>"},
		},
		{
			name:     "crlf input renders",
			input:    "linha um\r\nlinha dois",
			contains: []string{"linha um", "linha dois"},
		},
		{
			name:  "empty input renders empty",
			input: "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Markdown(tt.input))
			if tt.input == "   " && got != "" {
				t.Fatalf("blank input should render empty, got %q", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("output should not contain %q:\n%s", bad, got)
				}
			}
		})
	}
}
