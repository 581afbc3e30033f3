// Package metadata projects loosely-typed result records onto per-view
// field whitelists. Each view corresponds to one search mode and lists
// the fields its renderer is allowed to see; everything else (unknown
// keys, underscore-prefixed private keys) is dropped.
package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

// ErrUnknownView is returned when a caller asks for a view that has no
// whitelist. Proceeding without one would apply no filtering at all, so
// this is treated as a configuration error rather than a silent pass.
var ErrUnknownView = fmt.Errorf("metadata: unknown view")

var commonFields = []string{"title", "number", "source"}

var viewFields = map[string][]string{
	"ragbot":       append(common(), "citations", "total_tokens_used", "model", "temperature"),
	"lexical":      common(),
	"semantical":   append(common(), "area", "theme", "author", "sigla", "date", "link", "score", "argumento", "section", "folha"),
	"mancia":       append(common(), "citations", "total_tokens_used", "model", "temperature"),
	"verbetopedia": append(common(), "area", "theme", "author", "sigla", "date", "link", "score"),
}

func common() []string {
	out := make([]string, len(commonFields))
	copy(out, commonFields)
	return out
}

// Views lists the known view names.
func Views() []string {
	out := make([]string, 0, len(viewFields))
	for name := range viewFields {
		out = append(out, name)
	}
	return out
}

// KnownView reports whether the named view has a whitelist.
func KnownView(view string) bool {
	_, ok := viewFields[view]
	return ok
}

// ExtractOne projects a single record onto the view's whitelist. Nested
// plain objects are recursively extracted under the same view; nested
// arrays pass through unprocessed.
func ExtractOne(item map[string]any, view string) (map[string]any, error) {
	fields, ok := viewFields[view]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	return project(item, fields, view), nil
}

// ExtractMany projects each record of a slice onto the view's whitelist,
// preserving order. The one-record case returns a one-element slice; the
// singleton unwrapping of the original implementation was deliberately
// split into ExtractOne to keep the return shape consistent.
func ExtractMany(items []map[string]any, view string) ([]map[string]any, error) {
	fields, ok := viewFields[view]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, project(item, fields, view))
	}
	return out, nil
}

func project(item map[string]any, fields []string, view string) map[string]any {
	record := make(map[string]any)
	if item == nil {
		return record
	}
	allowed := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		allowed[f] = struct{}{}
	}
	for key, value := range item {
		if _, ok := allowed[key]; !ok {
			continue
		}
		if strings.HasPrefix(key, "_") {
			continue
		}
		if value != nil && reflect.TypeOf(value).Kind() == reflect.Func {
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			record[key] = project(nested, fields, view)
			continue
		}
		record[key] = value
	}
	return record
}
