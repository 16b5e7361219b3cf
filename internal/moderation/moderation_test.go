// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package moderation

import (
	"errors"
	"testing"

	"inkwell/internal/models"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		from    models.PostStatus
		action  Action
		want    models.PostStatus
		wantErr bool
	}{
		{"approve pending", models.PostStatusPendingApproval, ActionApprove, models.PostStatusPublished, false},
		{"approve published is a no-op", models.PostStatusPublished, ActionApprove, models.PostStatusPublished, false},
		{"approve rejected is invalid", models.PostStatusRejected, ActionApprove, "", true},
		{"approve draft is invalid", models.PostStatusDraft, ActionApprove, "", true},
		{"reject pending", models.PostStatusPendingApproval, ActionReject, models.PostStatusRejected, false},
		{"reject published (takedown)", models.PostStatusPublished, ActionReject, models.PostStatusRejected, false},
		{"reject rejected is a no-op", models.PostStatusRejected, ActionReject, models.PostStatusRejected, false},
		{"reject draft is invalid", models.PostStatusDraft, ActionReject, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.from, tt.action)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Apply(%s, %s): expected error, got %s", tt.from, tt.action, got)
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("expected ErrInvalidTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply(%s, %s): %v", tt.from, tt.action, err)
			}
			if got != tt.want {
				t.Errorf("Apply(%s, %s): got %s, want %s", tt.from, tt.action, got, tt.want)
			}
		})
	}
}

func TestIsNoOp(t *testing.T) {
	if !IsNoOp(models.PostStatusPublished, ActionApprove) {
		t.Error("approve on published should be a no-op")
	}
	if !IsNoOp(models.PostStatusRejected, ActionReject) {
		t.Error("reject on rejected should be a no-op")
	}
	if IsNoOp(models.PostStatusPendingApproval, ActionApprove) {
		t.Error("approve on pending is a real transition, not a no-op")
	}
	if IsNoOp(models.PostStatusDraft, ActionApprove) {
		t.Error("invalid transitions are not no-ops")
	}
}
