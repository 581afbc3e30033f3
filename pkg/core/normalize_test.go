package core

import (
	"encoding/json"
	"testing"
)

func TestNormalizeLexical(t *testing.T) {
	t.Run("passes the canonical envelope through", func(t *testing.T) {
		raw := []byte(`{"count":2,"search_type":"lexical","term":"tenepes","results":[{"title":"A","source":"LO"},{"title":"B","source":"DAC"}]}`)
		env, err := NormalizeLexical(raw, "tenepes")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Count != 2 || env.SearchType != ModeLexical || len(env.Results) != 2 {
			t.Errorf("unexpected envelope: %+v", env)
		}
	})

	t.Run("missing results degrades to empty slice", func(t *testing.T) {
		env, err := NormalizeLexical([]byte(`{"count":0,"term":"x"}`), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Results == nil {
			t.Fatal("Results is nil after normalization")
		}
		if len(env.Results) != 0 {
			t.Errorf("expected empty results, got %d", len(env.Results))
		}
	})

	t.Run("null results degrades to empty slice", func(t *testing.T) {
		env, err := NormalizeLexical([]byte(`{"count":3,"results":null}`), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Results == nil {
			t.Fatal("Results is nil after normalization")
		}
	})

	t.Run("bare array is wrapped", func(t *testing.T) {
		env, err := NormalizeLexical([]byte(`[{"title":"A"}]`), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Count != 1 || env.SearchType != ModeLexical || env.Term != "x" {
			t.Errorf("unexpected envelope: %+v", env)
		}
	})

	t.Run("garbage fails", func(t *testing.T) {
		if _, err := NormalizeLexical([]byte(`not json`), "x"); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestNormalizeSemantical(t *testing.T) {
	t.Run("wraps bare array and folds alias", func(t *testing.T) {
		raw := []byte(`[{"title":"A","source":"ECALL_DEF","score":0.91},{"title":"B","source":"LO","score":0.42}]`)
		env, err := NormalizeSemantical(raw, "evolução")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Count != 2 {
			t.Errorf("Count = %d, want 2", env.Count)
		}
		if env.SearchType != ModeSemantical {
			t.Errorf("SearchType = %q, want semantical", env.SearchType)
		}
		if env.Term != "evolução" {
			t.Errorf("Term = %q", env.Term)
		}
		if env.Results[0].Source != "EC" {
			t.Errorf("alias not folded: %q", env.Results[0].Source)
		}
		if env.Results[1].Source != "LO" {
			t.Errorf("unrelated source rewritten: %q", env.Results[1].Source)
		}
	})

	t.Run("folding is idempotent", func(t *testing.T) {
		raw := []byte(`[{"source":"ECALL_DEF"}]`)
		env, err := NormalizeSemantical(raw, "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		again, err := json.Marshal(env.Results)
		if err != nil {
			t.Fatalf("re-marshal: %v", err)
		}
		env2, err := NormalizeSemantical(again, "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env2.Results[0].Source != "EC" {
			t.Errorf("second normalization changed source: %q", env2.Results[0].Source)
		}
	})

	t.Run("empty array yields empty envelope", func(t *testing.T) {
		env, err := NormalizeSemantical([]byte(`[]`), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.Results == nil || len(env.Results) != 0 || env.Count != 0 {
			t.Errorf("unexpected envelope: %+v", env)
		}
	})
}

func TestNormalizeChat(t *testing.T) {
	t.Run("applies defaults and regroups citations", func(t *testing.T) {
		raw := []byte(`{"text":"resposta","citations":"[LO.txt, 12]; [LO.txt, 5]","model":"gpt-5-nano","temperature":0.3}`)
		ans, err := NormalizeChat(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ans.Citations != "LO: 5, 12" {
			t.Errorf("Citations = %q", ans.Citations)
		}
		if ans.TotalTokensUsed != 0 {
			t.Errorf("TotalTokensUsed = %d, want 0", ans.TotalTokensUsed)
		}
		if ans.Type != "ragbot" {
			t.Errorf("Type = %q, want ragbot", ans.Type)
		}
	})

	t.Run("keeps explicit type and continuation id", func(t *testing.T) {
		raw := []byte(`{"text":"t","citations":"","type":"mancia","chat_id":"abc-123","total_tokens_used":77}`)
		ans, err := NormalizeChat(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ans.Type != "mancia" || ans.ChatID != "abc-123" || ans.TotalTokensUsed != 77 {
			t.Errorf("unexpected answer: %+v", ans)
		}
	})
}
