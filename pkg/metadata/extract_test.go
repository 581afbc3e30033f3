package metadata

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtractOneWhitelist(t *testing.T) {
	item := map[string]any{
		"title":  "Verbete",
		"number": "120",
		"source": "LO",
		"secret": "do not leak",
	}
	got, err := ExtractOne(item, "lexical")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"title":  "Verbete",
		"number": "120",
		"source": "LO",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractOne = %#v, want %#v", got, want)
	}
}

func TestExtractOneDropsPrivateFields(t *testing.T) {
	item := map[string]any{
		"title":   "T",
		"_source": "hidden", // underscore marker, even if whitelisted-looking
	}
	got, err := ExtractOne(item, "lexical")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["_source"]; ok {
		t.Error("underscore-prefixed field survived extraction")
	}
}

func TestExtractOneRecursesIntoObjects(t *testing.T) {
	item := map[string]any{
		"title": map[string]any{
			"title":  "inner",
			"secret": "nope",
		},
		"source": "EC",
	}
	got, err := ExtractOne(item, "verbetopedia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner, ok := got["title"].(map[string]any)
	if !ok {
		t.Fatalf("nested object not extracted: %#v", got["title"])
	}
	if inner["title"] != "inner" {
		t.Errorf("nested whitelisted field missing: %#v", inner)
	}
	if _, leaked := inner["secret"]; leaked {
		t.Error("nested non-whitelisted field survived")
	}
}

func TestExtractOnePassesArraysThrough(t *testing.T) {
	arr := []any{"a", "b"}
	item := map[string]any{"citations": arr, "title": "T"}
	got, err := ExtractOne(item, "ragbot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got["citations"], arr) {
		t.Errorf("array field was not passed through: %#v", got["citations"])
	}
}

func TestExtractUnknownView(t *testing.T) {
	if _, err := ExtractOne(map[string]any{"title": "T"}, "nope"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("expected ErrUnknownView, got %v", err)
	}
	if _, err := ExtractMany(nil, "nope"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("expected ErrUnknownView, got %v", err)
	}
}

func TestExtractManyPreservesOrder(t *testing.T) {
	items := []map[string]any{
		{"title": "first", "score": 0.1},
		{"title": "second", "score": 0.9},
	}
	got, err := ExtractMany(items, "semantical")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0]["title"] != "first" || got[1]["title"] != "second" {
		t.Errorf("order not preserved: %#v", got)
	}
	if got[1]["score"] != 0.9 {
		t.Errorf("semantical view should keep score: %#v", got[1])
	}
}

func TestExtractManyNilItem(t *testing.T) {
	got, err := ExtractMany([]map[string]any{nil}, "lexical")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("nil item should yield empty record: %#v", got)
	}
}
