// Package platform defines the adapter contract every social platform
// implements: enumerate deletable targets, produce a lazy sequence of
// deletion candidates, delete a single candidate, and estimate a match
// count. The task queue is written against these interfaces only.
package platform

import (
	"context"
	"time"
)

// User identifies the authenticated account behind a token.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

// TargetType is one selectable scope category (e.g. DMs vs guilds).
type TargetType struct {
	Key  string
	Name string
}

// Features declares which task kinds a platform supports.
type Features struct {
	Purge bool
	Dump  bool
}

// Platform is one social platform adapter.
type Platform interface {
	// Key is the stable identifier used in account storage ("discord").
	Key() string
	Name() string
	FilterSpecs() []FilterSpec
	TargetTypes() []TargetType
	Features() Features

	// Delay is the courtesy pause between consecutive requests while a
	// task is running.
	Delay() time.Duration

	// TokenFlow acquires a fresh credential interactively.
	TokenFlow(ctx context.Context) (string, error)

	// WithToken validates a token and returns an actor bound to it.
	// Returns ErrUnauthorized when the platform rejects the token.
	WithToken(ctx context.Context, token string) (Actor, error)
}

// Actor is an authenticated session on one platform.
type Actor interface {
	User() User
	Targets(ctx context.Context, typeKey string) ([]Target, error)
}

// Target is a deletable scope: a DM thread, a guild, or one of its
// channels. Targets are immutable once constructed.
type Target interface {
	ID() string
	// ParentID is set for one level of nesting only (guild -> channel).
	ParentID() string
	Name() string
	IconURL() string
	Type() string
	// Disabled targets are shown but not selectable (e.g. categories).
	Disabled() bool
	User() User

	// HasChildren reports whether Children may be called.
	HasChildren() bool
	Children(ctx context.Context) ([]Target, error)

	// CanEstimate reports whether Estimate may be called. Estimates are
	// best effort and may be stale; callers surface that caveat.
	CanEstimate() bool
	Estimate(ctx context.Context, filters Filters) (int, error)

	// Query returns a fresh candidate sequence for the given filters.
	// A sequence is never restarted; build a new one instead.
	Query(filters Filters) Sequence
}

// Item is one deletable unit discovered by a search query. Items are
// ephemeral and consumed within a single queue iteration.
type Item interface {
	ID() string
	Delete(ctx context.Context) Outcome
	// Snapshot returns the exportable view of the item for dump sinks.
	Snapshot() Snapshot
}

// Snapshot is the sink-facing record of an item.
type Snapshot struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id,omitempty"`
	AuthorID    string    `json:"author_id,omitempty"`
	AuthorName  string    `json:"author_name,omitempty"`
	Content     string    `json:"content,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
}
