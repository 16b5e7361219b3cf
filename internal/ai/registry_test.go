// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
)

// mockProvider is a test double implementing the Provider interface.
// It records calls and returns configurable responses.
type mockProvider struct {
	name       string
	response   string
	err        error
	callCount  int
	lastSystem string
	lastUser   string
	mu         sync.Mutex
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	return m.response, m.err
}

func TestRegistryGenerate(t *testing.T) {
	t.Run("delegates to active provider", func(t *testing.T) {
		mock := &mockProvider{name: "test", response: "Hello from mock"}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		result, err := reg.Generate(context.Background(), "system", "user")
		if err != nil {
			t.Fatalf("Generate: unexpected error: %v", err)
		}
		if result != "Hello from mock" {
			t.Errorf("result: got %q, want %q", result, "Hello from mock")
		}

		mock.mu.Lock()
		defer mock.mu.Unlock()
		if mock.callCount != 1 {
			t.Errorf("callCount: got %d, want 1", mock.callCount)
		}
		if mock.lastSystem != "system" {
			t.Errorf("systemPrompt: got %q, want %q", mock.lastSystem, "system")
		}
		if mock.lastUser != "user" {
			t.Errorf("userPrompt: got %q, want %q", mock.lastUser, "user")
		}
	})

	t.Run("propagates provider error", func(t *testing.T) {
		mock := &mockProvider{name: "test", err: fmt.Errorf("api failure")}

		reg := &Registry{
			providers: map[string]Provider{"test": mock},
			active:    "test",
		}

		_, err := reg.Generate(context.Background(), "system", "user")
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if err.Error() != "api failure" {
			t.Errorf("error: got %q, want %q", err.Error(), "api failure")
		}
	})

	t.Run("error when no provider is active", func(t *testing.T) {
		reg := &Registry{providers: map[string]Provider{}, active: "openai"}

		if _, err := reg.Generate(context.Background(), "s", "u"); err == nil {
			t.Fatal("expected error for missing active provider")
		}
	})
}

func TestNewRegistrySkipsMissingKeys(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai":  {APIKey: "sk-test", Model: "gpt-4o-mini"},
		"gemini":  {APIKey: "", Model: "gemini-2.0-flash"},
		"claude":  {APIKey: "ck-test", Model: "claude-sonnet-4-20250514"},
		"mistral": {},
	})

	available := reg.Available()
	sort.Strings(available)
	if len(available) != 2 || available[0] != "claude" || available[1] != "openai" {
		t.Errorf("Available: got %v, want [claude openai]", available)
	}

	if !reg.HasProvider("openai") {
		t.Error("expected openai to be configured")
	}
	if reg.HasProvider("gemini") {
		t.Error("gemini has no key and must not be configured")
	}
}

func TestRegistrySetActive(t *testing.T) {
	reg := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: "sk-test"},
		"claude": {APIKey: "ck-test"},
	})

	if err := reg.SetActive("claude"); err != nil {
		t.Fatalf("SetActive(claude): %v", err)
	}
	if reg.ActiveName() != "claude" {
		t.Errorf("ActiveName: got %q, want claude", reg.ActiveName())
	}

	if err := reg.SetActive("gemini"); err == nil {
		t.Error("expected error switching to unconfigured provider")
	}
	if reg.ActiveName() != "claude" {
		t.Error("failed switch must not change the active provider")
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry("custom", map[string]ProviderConfig{})
	mock := &mockProvider{name: "custom", response: "injected"}

	reg.Register("custom", mock)

	result, err := reg.Generate(context.Background(), "s", "u")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result != "injected" {
		t.Errorf("result: got %q, want injected", result)
	}
}
