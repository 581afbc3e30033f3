package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Normalizers map raw backend payloads into the canonical envelope. Each
// search mode has its own quirks: lexical already answers with the
// envelope, semantical answers with a bare array, and the LLM endpoints
// answer with a citation string that needs regrouping.

// NormalizeLexical decodes a lexical search payload. The backend already
// returns the canonical envelope; a missing or malformed results field
// degrades to an empty set instead of failing the render.
func NormalizeLexical(raw []byte, term string) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		// Defensive: some deployments answered with a bare array here too.
		return wrapArray(trimmed, ModeLexical, term)
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decoding lexical response: %w", err)
	}
	if env.SearchType == "" {
		env.SearchType = ModeLexical
	}
	if env.Term == "" {
		env.Term = term
	}
	env.EnsureResults()
	return &env, nil
}

// NormalizeSemantical wraps the bare array the semantical endpoint
// returns into an envelope and folds the ECALL_DEF alias to EC on every
// item, so one logical collection is displayed under one identity.
func NormalizeSemantical(raw []byte, term string) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("[")) {
		// Tolerate an already-wrapped envelope.
		var env Envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decoding semantical response: %w", err)
		}
		env.SearchType = ModeSemantical
		if env.Term == "" {
			env.Term = term
		}
		env.EnsureResults()
		foldAliases(env.Results)
		return &env, nil
	}
	return wrapArray(trimmed, ModeSemantical, term)
}

func wrapArray(raw []byte, mode Mode, term string) (*Envelope, error) {
	var results []Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", mode, err)
	}
	env := &Envelope{
		Count:      len(results),
		SearchType: mode,
		Term:       term,
		Results:    results,
	}
	env.EnsureResults()
	foldAliases(env.Results)
	return env, nil
}

func foldAliases(results []Result) {
	for i := range results {
		if Collection(results[i].Source) == CollectionECAllDef {
			results[i].Source = string(CollectionEC)
			if results[i].raw != nil {
				results[i].raw["source"] = string(CollectionEC)
			}
		}
	}
}

// ChatAnswer is the normalized shape of an LLM exchange.
type ChatAnswer struct {
	Text            string  `json:"text"`
	Citations       string  `json:"citations"`
	TotalTokensUsed int     `json:"total_tokens_used"`
	Type            string  `json:"type"`
	Model           string  `json:"model"`
	Temperature     float64 `json:"temperature"`
	ChatID          string  `json:"chat_id,omitempty"`
}

// NormalizeChat decodes an LLM query response, regroups its citation
// string and applies the documented defaults (zero tokens, ragbot type).
func NormalizeChat(raw []byte) (*ChatAnswer, error) {
	var ans ChatAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return nil, fmt.Errorf("decoding llm response: %w", err)
	}
	ans.Citations = GroupCitations(ans.Citations)
	if ans.Type == "" {
		ans.Type = string(ModeRagbot)
	}
	return &ans, nil
}

// Pensata is the payload of the random-pensata endpoint.
type Pensata struct {
	Text string `json:"text"`
	Ref  string `json:"ref,omitempty"`
}
