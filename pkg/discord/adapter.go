// Package discord implements the Discord platform adapter: a
// rate-limit-aware REST client, message search as a lazy candidate
// sequence, and DM/guild target enumeration.
package discord

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

// TokenFlowFunc acquires a user token interactively. The CLI wires in
// the Chrome capture flow; tests can stub it.
type TokenFlowFunc func(ctx context.Context) (string, error)

// Discord is the platform adapter.
type Discord struct {
	tokenFlow  TokenFlowFunc
	clientOpts []ClientOption

	mu    sync.Mutex
	users map[string]discordUser // token -> identified user
}

// Option configures the adapter.
type Option func(*Discord)

// WithTokenFlow sets the interactive token acquisition flow.
func WithTokenFlow(fn TokenFlowFunc) Option {
	return func(d *Discord) {
		d.tokenFlow = fn
	}
}

// WithClientOptions forwards options to every client the adapter builds.
func WithClientOptions(opts ...ClientOption) Option {
	return func(d *Discord) {
		d.clientOpts = opts
	}
}

// New creates the Discord adapter.
func New(opts ...Option) *Discord {
	d := &Discord{users: make(map[string]discordUser)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Discord) Key() string  { return "discord" }
func (d *Discord) Name() string { return "Discord" }

func (d *Discord) Features() platform.Features {
	return platform.Features{Purge: true, Dump: true}
}

// Delay is the courtesy pause between requests while a task runs.
func (d *Discord) Delay() time.Duration { return 400 * time.Millisecond }

func (d *Discord) TargetTypes() []platform.TargetType {
	return []platform.TargetType{
		{Key: "dms", Name: "DMs"},
		{Key: "guilds", Name: "Guild messages"},
	}
}

func (d *Discord) FilterSpecs() []platform.FilterSpec {
	return []platform.FilterSpec{
		{
			Key:   "options",
			Title: "Options",
			Kind:  platform.FilterToggles,
			Toggles: []platform.FilterToggle{
				{Key: "oldest", Title: "Start from oldest", Default: true},
			},
		},
		{Key: "content", Title: "Contains text", Kind: platform.FilterText},
		{Key: "range", Title: "Date range", Kind: platform.FilterDateRange},
		{
			Key:   "has",
			Title: "Contains",
			Kind:  platform.FilterSelect,
			Options: []platform.FilterOption{
				{Label: "Anything", Value: ""},
				{Label: "File", Value: "file"},
				{Label: "Image", Value: "image"},
				{Label: "Embed", Value: "embed"},
				{Label: "Sound", Value: "sound"},
				{Label: "Video", Value: "video"},
				{Label: "Sticker", Value: "sticker"},
			},
		},
	}
}

// TokenFlow acquires a fresh token via the configured flow.
func (d *Discord) TokenFlow(ctx context.Context) (string, error) {
	if d.tokenFlow == nil {
		return "", fmt.Errorf("discord: no token flow configured")
	}
	return d.tokenFlow(ctx)
}

// WithToken identifies the token's user and returns an actor bound to
// it. Identified users are cached per token.
func (d *Discord) WithToken(ctx context.Context, token string) (platform.Actor, error) {
	client := NewClient(token, d.clientOpts...)

	d.mu.Lock()
	u, ok := d.users[token]
	d.mu.Unlock()

	if !ok {
		var err error
		u, err = client.Me(ctx)
		if err != nil {
			return nil, err
		}
		d.mu.Lock()
		d.users[token] = u
		d.mu.Unlock()
	}

	return &actor{client: client, user: u}, nil
}

// actor is an authenticated Discord session.
type actor struct {
	client *Client
	user   discordUser
}

func (a *actor) User() platform.User {
	return platform.User{
		ID:      a.user.ID,
		Name:    a.user.displayName(),
		IconURL: a.user.avatarURL(),
	}
}

// Targets enumerates DM channels (most recent activity first) or
// guilds for the authenticated user.
func (a *actor) Targets(ctx context.Context, typeKey string) ([]platform.Target, error) {
	user := a.User()

	switch typeKey {
	case "dms":
		channels, err := a.client.DMChannels(ctx)
		if err != nil {
			return nil, err
		}

		sort.SliceStable(channels, func(i, j int) bool {
			return lastMessageOrd(channels[j]) < lastMessageOrd(channels[i])
		})

		var targets []platform.Target
		for _, ch := range channels {
			if len(ch.Recipients) == 0 {
				continue
			}
			targets = append(targets, newDMTarget(a.client, user, ch))
		}
		return targets, nil

	case "guilds":
		guilds, err := a.client.Guilds(ctx)
		if err != nil {
			return nil, err
		}

		var targets []platform.Target
		for _, g := range guilds {
			targets = append(targets, newGuildTarget(a.client, user, g))
		}
		return targets, nil
	}

	return nil, fmt.Errorf("discord: unsupported target type %q", typeKey)
}

func lastMessageOrd(ch dmChannel) int64 {
	n, _ := strconv.ParseInt(ch.LastMessageID, 10, 64)
	return n
}
