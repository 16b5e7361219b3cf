package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Validation limits for post and comment fields.
const (
	maxTitleLen   = 300
	maxContentLen = 100_000
	maxCommentLen = 5_000
	maxImages     = 10
	maxImageBytes = 10 << 20
)

// validate performs struct-tag validation for JSON request bodies.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validatePost checks post inputs and returns the first error found.
func validatePost(title, content string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// validateComment checks comment inputs and returns the first error found.
func validateComment(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "Comment is required."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)."
	}
	return ""
}
