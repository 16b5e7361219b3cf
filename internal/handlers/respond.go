// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"inkwell/internal/ai"
)

// writeJSON encodes v as the response body. Encoding failures are logged
// but not recoverable — headers are already out.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError sends the standard error shape: {"error": "..."}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAIError maps enrichment failures onto responses. Upstream provider
// rejections come back as 502 so the client can tell "the AI said no"
// apart from "we broke".
func writeAIError(w http.ResponseWriter, err error) {
	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) {
		slog.Error("ai provider error",
			"provider", statusErr.Provider,
			"status", statusErr.StatusCode)
		writeError(w, http.StatusBadGateway,
			fmt.Sprintf("upstream AI provider error: %s returned status %d",
				statusErr.Provider, statusErr.StatusCode))
		return
	}
	slog.Error("ai generation failed", "error", err)
	writeError(w, http.StatusInternalServerError, "generation failed")
}

// decodeJSON parses the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
