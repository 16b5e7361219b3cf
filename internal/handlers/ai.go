// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"inkwell/internal/ai"
	"inkwell/internal/markdown"
)

// --- AI Assistant Endpoints ---
//
// These handlers power the writing assistant. Each one builds a system
// prompt for the task, relays the author's input to the active provider,
// and returns the result — markdown-bearing answers come back both raw
// and rendered to HTML.

// Enrichment groups the AI proxy handlers.
type Enrichment struct {
	registry *ai.Registry
	images   *ai.ImageSearch
}

func NewEnrichment(registry *ai.Registry, images *ai.ImageSearch) *Enrichment {
	return &Enrichment{registry: registry, images: images}
}

type enrichRequest struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	Question string `json:"question,omitempty"`
}

// GenerateTitle suggests titles for a draft.
func (h *Enrichment) GenerateTitle(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	systemPrompt := `You are an editor helping a blogger title their post.

Rules:
- Suggest exactly 5 titles for the post the user provides.
- Output ONLY the titles, one per line, numbered "1." through "5.".
- Titles are concise (under 80 characters), specific and not clickbait.`

	result, err := h.registry.Generate(r.Context(), systemPrompt, req.Content)
	if err != nil {
		writeAIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"provider": h.registry.ActiveName(),
		"titles":   splitNumberedList(result),
	})
}

// splitNumberedList turns "1. Foo\n2. Bar" provider output into a slice.
// Lines that are not list items are kept verbatim so a misbehaving
// provider still yields something usable.
func splitNumberedList(s string) []string {
	var items []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 2 {
			if _, err := fmt.Sscanf(line[:i], "%d", new(int)); err == nil {
				line = strings.TrimSpace(line[i+1:])
			}
		}
		line = strings.Trim(line, `"`)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// Summarize produces a short summary of a post.
func (h *Enrichment) Summarize(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	systemPrompt := `You are an editor writing the summary line for a blog post.

Rules:
- Summarize the post the user provides in 2-3 sentences of plain Markdown.
- Stay factual to the text; do not add claims the post does not make.
- Do NOT wrap the output in code fences.`

	userPrompt := req.Content
	if t := strings.TrimSpace(req.Title); t != "" {
		userPrompt = fmt.Sprintf("Title: %s\n\n%s", t, req.Content)
	}

	result, err := h.registry.Generate(r.Context(), systemPrompt, userPrompt)
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"provider":     h.registry.ActiveName(),
		"summary":      result,
		"summary_html": h.renderHTML(result),
	})
}

// Ask relays a free-form writing question to the active provider.
func (h *Enrichment) Ask(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	systemPrompt := `You are a writing assistant for a blogging platform.

Rules:
- Answer the author's question helpfully and concretely.
- Use standard Markdown syntax: **bold**, *italic*, - lists, [links](url).
- Keep answers under 300 words unless the question demands more.`

	result, err := h.registry.Generate(r.Context(), systemPrompt, req.Question)
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"provider":    h.registry.ActiveName(),
		"answer":      result,
		"answer_html": h.renderHTML(result),
	})
}

// BlogTips returns general writing advice for the dashboard panel.
func (h *Enrichment) BlogTips(w http.ResponseWriter, r *http.Request) {
	systemPrompt := `You are an experienced blog editor coaching authors.

Rules:
- Give 5 practical tips for writing blog posts that readers finish.
- Output a Markdown bullet list; each tip is one or two sentences.
- Cover structure, openings, clarity and engagement.`

	result, err := h.registry.Generate(r.Context(), systemPrompt, "Give me today's writing tips.")
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"provider":  h.registry.ActiveName(),
		"tips":      result,
		"tips_html": h.renderHTML(result),
	})
}

func (h *Enrichment) renderHTML(md string) string {
	html, err := markdown.ToHTML(md)
	if err != nil {
		slog.Error("markdown render failed", "error", err)
		return ""
	}
	return html
}

// ImageSuggestions searches the openly-licensed image index for
// candidates matching the query parameter.
func (h *Enrichment) ImageSuggestions(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	suggestions, err := h.images.Search(r.Context(), query, 12)
	if err != nil {
		writeAIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": suggestions})
}
