// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package moderation defines the post lifecycle state machine. Every
// editor action is checked against an explicit transition table so that
// a moderation action only applies to posts it makes sense for.
package moderation

import (
	"errors"
	"fmt"

	"inkwell/internal/models"
)

// Action is a moderation action applied to a post.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ErrInvalidTransition is returned when an action does not apply to the
// post's current status.
var ErrInvalidTransition = errors.New("moderation: invalid transition")

// transition is a (current status, action) pair.
type transition struct {
	from   models.PostStatus
	action Action
}

// table maps permitted transitions to the resulting status. Pairs where
// from == to are idempotent no-ops: approving an already-published post
// or rejecting an already-rejected one must succeed without effect.
// Reject from published is the explicit takedown path — it withdraws a
// live post and records the acting editor.
var table = map[transition]models.PostStatus{
	{models.PostStatusPendingApproval, ActionApprove}: models.PostStatusPublished,
	{models.PostStatusPublished, ActionApprove}:       models.PostStatusPublished,
	{models.PostStatusPendingApproval, ActionReject}:  models.PostStatusRejected,
	{models.PostStatusPublished, ActionReject}:        models.PostStatusRejected,
	{models.PostStatusRejected, ActionReject}:         models.PostStatusRejected,
}

// Apply returns the status a post moves to when the action is applied,
// or ErrInvalidTransition when the pair is not in the table.
func Apply(current models.PostStatus, action Action) (models.PostStatus, error) {
	next, ok := table[transition{current, action}]
	if !ok {
		return current, fmt.Errorf("%w: cannot %s a %s post", ErrInvalidTransition, action, current)
	}
	return next, nil
}

// IsNoOp reports whether applying the action would leave the post
// unchanged. Callers use this to skip the write and the approver update.
func IsNoOp(current models.PostStatus, action Action) bool {
	next, err := Apply(current, action)
	return err == nil && next == current
}
