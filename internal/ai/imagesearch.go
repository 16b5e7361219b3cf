// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ImageSearch queries an Openverse-compatible image search API for
// openly-licensed images matching a text query. Results back the editor's
// image suggestion panel.
type ImageSearch struct {
	baseURL string
	client  *http.Client
}

// NewImageSearch creates an image search client. baseURL defaults to the
// public Openverse API when empty.
func NewImageSearch(baseURL string) *ImageSearch {
	if baseURL == "" {
		baseURL = "https://api.openverse.org"
	}
	return &ImageSearch{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ImageSuggestion is one search hit, reduced to the fields the editor uses.
type ImageSuggestion struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
	Creator   string `json:"creator"`
	License   string `json:"license"`
}

// Search returns up to limit image suggestions for the query.
func (s *ImageSearch) Search(ctx context.Context, query string, limit int) ([]ImageSuggestion, error) {
	if limit <= 0 || limit > 50 {
		limit = 12
	}

	endpoint := fmt.Sprintf("%s/v1/images/?q=%s&page_size=%d",
		s.baseURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("image search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image search read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "image-search", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result openverseResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("image search unmarshal: %w", err)
	}

	suggestions := make([]ImageSuggestion, 0, len(result.Results))
	for _, r := range result.Results {
		suggestions = append(suggestions, ImageSuggestion{
			URL:       r.URL,
			Thumbnail: r.Thumbnail,
			Title:     r.Title,
			Creator:   r.Creator,
			License:   r.License,
		})
	}
	return suggestions, nil
}

// --- Openverse image search API types ---

type openverseResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Creator   string `json:"creator"`
	License   string `json:"license"`
}

type openverseResponse struct {
	ResultCount int               `json:"result_count"`
	Results     []openverseResult `json:"results"`
}
