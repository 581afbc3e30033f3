// Package web serves the HTML interface: one page per search mode,
// rendered server-side with the same pipeline the CLI uses. Each mode
// keeps its own flight controller so a new submit supersedes the
// previous request for that mode only.
package web

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/consai/consai/pkg/client"
	"github.com/consai/consai/pkg/config"
	"github.com/consai/consai/pkg/core"
	"github.com/consai/consai/pkg/export"
	"github.com/consai/consai/pkg/flight"
	"github.com/consai/consai/pkg/log"
	"github.com/consai/consai/pkg/render"
	"github.com/consai/consai/pkg/session"
)

// Server holds the web UI dependencies.
type Server struct {
	mu      sync.RWMutex
	cfg     *config.Config
	api     *client.Client
	session *session.Store
	render  *render.Renderer
	state   *export.State
	flights map[core.Mode]*flight.Controller
	logger  *log.Logger
}

// NewServer wires a server from the given config. The backend gets a
// warm-up ping so free-tier deployments start spinning up before the
// first real query.
func NewServer(cfg *config.Config) (*Server, error) {
	stateDir, err := config.GetStateDir()
	if err != nil {
		return nil, fmt.Errorf("locating state directory: %w", err)
	}
	store, err := session.NewStore(filepath.Join(stateDir, "session.toml"))
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	api := client.New(cfg.BaseURL)
	api.WarmUp(0)

	s := &Server{
		cfg:     cfg,
		api:     api,
		session: store,
		render:  render.New(nil),
		state:   &export.State{},
		flights: make(map[core.Mode]*flight.Controller),
		logger:  log.ForComponent("web"),
	}
	for _, mode := range core.Modes() {
		s.flights[mode] = flight.NewController(cfg.Timeout.Duration)
	}
	return s, nil
}

// Reconfigure swaps the active config, pointing the client at a new
// base URL when it changed. Used by the config file watcher.
func (s *Server) Reconfigure(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.BaseURL != s.cfg.BaseURL {
		s.api = client.New(cfg.BaseURL)
	}
	s.cfg = cfg
	s.logger.Infof("configuration reloaded (backend %s)", cfg.BaseURL)
}

func (s *Server) snapshot() (*config.Config, *client.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.api
}

// RegisterRoutes attaches all UI handlers to the mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/chat/reset", s.handleChatReset)
	mux.HandleFunc("/mancia", s.handleMancia)
	mux.HandleFunc("/verbetopedia", s.handleVerbetopedia)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/healthz", s.handleHealthz)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderPage(w, pageData{Title: "Cons.AI"})
}

// handleSearch runs a lexical or semantical search and renders the
// result listing.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	term := strings.TrimSpace(r.FormValue("term"))
	if term == "" {
		s.renderPage(w, pageData{Title: "Cons.AI", Error: "Please enter a search term"})
		return
	}

	mode := core.Mode(r.FormValue("mode"))
	if mode != core.ModeLexical && mode != core.ModeSemantical {
		mode = core.ModeLexical
	}
	cfg, api := s.snapshot()

	sources := r.Form["source"]
	if len(sources) == 0 {
		sources = cfg.Sources()
	}
	limit := cfg.MaxResultsDisplay
	if v := r.FormValue("max_results"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ctrl := s.flights[mode]
	ticket := ctrl.Begin(r.Context())
	defer ctrl.End(ticket)

	params := client.SearchParams{Term: term, Sources: sources}
	var env *core.Envelope
	var err error
	if mode == core.ModeLexical {
		env, err = api.LexicalSearch(ticket.Context(), params)
	} else {
		params.Model = cfg.Model
		env, err = api.SemanticalSearch(ticket.Context(), params)
	}
	if err != nil {
		s.renderError(w, ticket, err)
		return
	}
	if !ctrl.IsCurrent(ticket) {
		// A newer submit owns this mode; drop the stale response.
		return
	}
	env.Truncate(limit)
	s.state.Update(env.Results, term, string(env.SearchType))

	grouped := mode == core.ModeLexical || r.FormValue("grouped") == "1"
	var body strings.Builder
	if err := s.render.Render(&body, mode, env, render.Options{Grouped: grouped}); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	s.renderPage(w, pageData{
		Title:      "Cons.AI",
		Term:       term,
		Mode:       string(mode),
		Results:    trusted(body.String()),
		CanExport:  len(env.Results) > 0,
		SearchType: string(env.SearchType),
	})
}

// handleChat runs one LLM exchange under the shared conversation.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	question := strings.TrimSpace(r.FormValue("term"))
	if question == "" {
		s.renderPage(w, pageData{Title: "Cons.AI Oracle", Error: "Please enter a search term"})
		return
	}
	cfg, api := s.snapshot()

	chatID, err := s.session.GetOrCreate()
	if err != nil {
		http.Error(w, fmt.Sprintf("session error: %v", err), http.StatusInternalServerError)
		return
	}

	ctrl := s.flights[core.ModeRagbot]
	ticket := ctrl.Begin(r.Context())
	defer ctrl.End(ticket)

	ans, err := api.LLMQuery(ticket.Context(), client.LLMParams{
		Query:            question,
		Model:            cfg.Model,
		Temperature:      cfg.Temperature,
		VectorStoreNames: cfg.VectorStore,
		Instructions:     cfg.Instruction("ragbot"),
		UseSession:       true,
		ChatID:           chatID,
	})
	if err != nil {
		s.renderError(w, ticket, err)
		return
	}
	if !ctrl.IsCurrent(ticket) {
		return
	}
	if err := s.session.Adopt(ans.ChatID); err != nil {
		s.logger.Warnf("saving chat session: %v", err)
	}

	var body strings.Builder
	if err := s.render.Render(&body, core.ModeTitle, "Cons.AI Oracle", render.Options{}); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	if err := s.render.Render(&body, core.ModeRagbot, ans, render.Options{}); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	s.renderPage(w, pageData{Title: "Cons.AI Oracle", Term: question, Results: trusted(body.String())})
}

// handleChatReset rotates the conversation id.
func (s *Server) handleChatReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, api := s.snapshot()

	old, _, err := s.session.Reset()
	if err != nil {
		http.Error(w, fmt.Sprintf("session error: %v", err), http.StatusInternalServerError)
		return
	}
	if old != "" {
		api.ResetConversation(r.Context(), old)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleMancia draws a random pensata and asks for its commentary.
func (s *Server) handleMancia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg, api := s.snapshot()

	ctrl := s.flights[core.ModeMancia]
	ticket := ctrl.Begin(r.Context())

	pensata, err := api.RandomPensata(ticket.Context(), "LO")
	if err != nil {
		ctrl.End(ticket)
		s.renderError(w, ticket, err)
		return
	}
	ctrl.End(ticket)

	var body strings.Builder
	title := "Pensata Sorteada:   ●   Léxico de Ortopensatas (2a edição, 2019)"
	if err := s.render.Render(&body, core.ModeTitle, title, render.Options{}); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	if err := s.render.Render(&body, core.ModeSimple, pensata, render.Options{}); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}

	if r.FormValue("no_commentary") != "1" {
		chatID, err := s.session.GetOrCreate()
		if err != nil {
			http.Error(w, fmt.Sprintf("session error: %v", err), http.StatusInternalServerError)
			return
		}

		ticket = ctrl.Begin(r.Context())
		defer ctrl.End(ticket)
		ans, err := api.LLMQuery(ticket.Context(), client.LLMParams{
			Query:            "Comente a seguinte Pensata: " + pensata.Text,
			Model:            cfg.Model,
			Temperature:      cfg.Temperature,
			VectorStoreNames: cfg.VectorStore,
			Instructions:     cfg.Instruction("mancia"),
			UseSession:       true,
			ChatID:           chatID,
		})
		if err != nil {
			s.renderError(w, ticket, err)
			return
		}
		if err := s.session.Adopt(ans.ChatID); err != nil {
			s.logger.Warnf("saving chat session: %v", err)
		}

		if err := s.render.Render(&body, core.ModeTitle, "Comentário", render.Options{}); err != nil {
			http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
			return
		}
		if err := s.render.Render(&body, core.ModeMancia, ans, render.Options{}); err != nil {
			http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
			return
		}
	}

	s.renderPage(w, pageData{Title: "Bibliomancia", Results: trusted(body.String())})
}

// handleVerbetopedia synthesizes a definition for the term and searches
// the encyclopedia for related verbetes.
func (s *Server) handleVerbetopedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	term := strings.TrimSpace(r.FormValue("term"))
	if term == "" {
		s.renderPage(w, pageData{Title: "Verbetopedia", Error: "Please enter a search term"})
		return
	}
	cfg, api := s.snapshot()

	ctrl := s.flights[core.ModeVerbetopedia]
	var body strings.Builder

	searchTerm := term
	if r.FormValue("no_synthesis") != "1" {
		chatID, err := s.session.GetOrCreate()
		if err != nil {
			http.Error(w, fmt.Sprintf("session error: %v", err), http.StatusInternalServerError)
			return
		}

		ticket := ctrl.Begin(r.Context())
		ans, err := api.LLMQuery(ticket.Context(), client.LLMParams{
			Query:         "**TEXTO DE ENTRADA** :  " + term + ".",
			Model:         cfg.Model,
			Temperature:   cfg.Temperature,
			VectorStoreID: cfg.VectorStore,
			Instructions:  cfg.Instruction("verbetopedia"),
			UseSession:    true,
			ChatID:        chatID,
		})
		ctrl.End(ticket)
		if err != nil {
			s.renderError(w, ticket, err)
			return
		}
		if err := s.session.Adopt(ans.ChatID); err != nil {
			s.logger.Warnf("saving chat session: %v", err)
		}

		synthesis := &core.Pensata{Text: ans.Text}
		if err := s.render.Render(&body, core.ModeSimple, synthesis, render.Options{}); err != nil {
			http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
			return
		}

		newTerm := strings.TrimSpace(ans.Text)
		if newTerm == "" {
			s.renderPage(w, pageData{Title: "Verbetopedia", Term: term, Results: trusted(body.String()),
				Error: "Sem síntese suficiente para buscar semelhanças."})
			return
		}
		searchTerm = term + ": " + newTerm + "."
	}

	ticket := ctrl.Begin(r.Context())
	defer ctrl.End(ticket)
	env, err := api.SemanticalSearch(ticket.Context(), client.SearchParams{
		Term:    searchTerm,
		Sources: []string{string(core.CollectionEC)},
		Model:   cfg.Model,
	})
	if err != nil {
		s.renderError(w, ticket, err)
		return
	}
	if !ctrl.IsCurrent(ticket) {
		return
	}
	env.Truncate(cfg.MaxResultsDisplay)
	s.state.Update(env.Results, term, string(core.ModeVerbetopedia))

	title := fmt.Sprintf("Verbetopedia    ●    %s", term)
	if err := s.render.Render(&body, core.ModeTitle, title, render.Options{}); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	if err := s.render.Render(&body, core.ModeVerbetopedia, env, render.Options{}); err != nil {
		http.Error(w, fmt.Sprintf("render error: %v", err), http.StatusInternalServerError)
		return
	}
	s.renderPage(w, pageData{Title: "Verbetopedia", Term: term, Results: trusted(body.String()),
		CanExport: len(env.Results) > 0, SearchType: string(core.ModeVerbetopedia)})
}

// handleExport streams the last result set as a document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, api := s.snapshot()

	format := r.FormValue("format")
	if format == "" {
		format = export.FormatDocx
	}

	results, term, searchType, err := s.state.Snapshot()
	if err != nil {
		http.Error(w, "No results to download.", http.StatusBadRequest)
		return
	}

	ctrl := s.flights[core.ModeSimple]
	ticket := ctrl.Begin(r.Context())
	defer ctrl.End(ticket)

	exporter := export.New(api)
	res, err := exporter.Export(ticket.Context(), format, results, term, searchType)
	if err != nil {
		s.renderError(w, ticket, err)
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	if _, err := w.Write(res.Data); err != nil {
		s.logger.Warnf("writing export response: %v", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		s.logger.Warnf("writing health response: %v", err)
	}
}

// renderError shows transport failures inside the page; timeouts and
// supersession get their dedicated messages.
func (s *Server) renderError(w http.ResponseWriter, t *flight.Ticket, err error) {
	msg := err.Error()
	switch {
	case flight.IsTimeout(err):
		msg = "Request timed out"
	case flight.IsSuperseded(t, err):
		msg = "Request superseded"
	}
	s.logger.Errorf("request failed: %v", err)
	s.renderPage(w, pageData{Title: "Cons.AI", Error: msg})
}
