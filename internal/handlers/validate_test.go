package handlers

import (
	"strings"
	"testing"
)

func TestValidatePost(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		wantErr bool
	}{
		{"valid", "A Title", "Some content.", false},
		{"empty title", "", "Some content.", true},
		{"whitespace title", "   ", "Some content.", true},
		{"empty content", "A Title", "", true},
		{"title too long", strings.Repeat("x", maxTitleLen+1), "Content.", true},
		{"content too long", "A Title", strings.Repeat("x", maxContentLen+1), true},
		{"title at limit", strings.Repeat("x", maxTitleLen), "Content.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validatePost(tt.title, tt.content)
			if (msg != "") != tt.wantErr {
				t.Errorf("validatePost(%q len, %q len) = %q, wantErr=%v",
					tt.title[:min(10, len(tt.title))], tt.content[:min(10, len(tt.content))], msg, tt.wantErr)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	if msg := validateComment("Nice post!"); msg != "" {
		t.Errorf("valid comment rejected: %q", msg)
	}
	if msg := validateComment("   "); msg == "" {
		t.Error("blank comment accepted")
	}
	if msg := validateComment(strings.Repeat("x", maxCommentLen+1)); msg == "" {
		t.Error("oversized comment accepted")
	}
}
