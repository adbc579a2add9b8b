package discord

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

type targetKind int

const (
	kindDM targetKind = iota
	kindGuild
	kindChannel
)

// target is one deletable Discord scope: a DM channel, a guild, or a
// single guild channel.
type target struct {
	client *Client
	user   platform.User

	kind     targetKind
	id       string
	parentID string
	name     string
	iconURL  string
	disabled bool
}

func newDMTarget(client *Client, user platform.User, ch dmChannel) *target {
	name := "(empty)"
	if len(ch.Recipients) > 0 {
		names := make([]string, len(ch.Recipients))
		for i, r := range ch.Recipients {
			names[i] = r.displayName()
		}
		name = strings.Join(names, ", ")
		if len(ch.Recipients) > 1 {
			name = "Group DM: " + name
		}
	}

	iconURL := ""
	if len(ch.Recipients) > 0 {
		iconURL = ch.Recipients[0].avatarURL()
	}

	return &target{
		client:  client,
		user:    user,
		kind:    kindDM,
		id:      ch.ID,
		name:    name,
		iconURL: iconURL,
	}
}

func newGuildTarget(client *Client, user platform.User, g guild) *target {
	return &target{
		client:  client,
		user:    user,
		kind:    kindGuild,
		id:      g.ID,
		name:    g.Name,
		iconURL: g.iconURL(),
	}
}

func newChannelTarget(client *Client, user platform.User, guildID string, ch guildChannel) *target {
	return &target{
		client:   client,
		user:     user,
		kind:     kindChannel,
		id:       ch.ID,
		parentID: guildID,
		name:     ch.Name,
		disabled: ch.Type == channelTypeCategory,
	}
}

func (t *target) ID() string          { return t.id }
func (t *target) ParentID() string    { return t.parentID }
func (t *target) Name() string        { return t.name }
func (t *target) IconURL() string     { return t.iconURL }
func (t *target) Disabled() bool      { return t.disabled }
func (t *target) User() platform.User { return t.user }

func (t *target) Type() string {
	if t.kind == kindDM {
		return "dms"
	}
	return "guilds"
}

func (t *target) HasChildren() bool { return t.kind == kindGuild }

// Children lists the guild's channels in display order: top-level
// channels by position, each category followed by its channels.
func (t *target) Children(ctx context.Context) ([]platform.Target, error) {
	if t.kind != kindGuild {
		return nil, fmt.Errorf("target %s has no children", t.id)
	}

	channels, err := t.client.GuildChannels(ctx, t.id)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].Position < channels[j].Position
	})

	var targets []platform.Target
	for _, ch := range channels {
		if ch.ParentID != "" {
			continue
		}
		targets = append(targets, newChannelTarget(t.client, t.user, t.id, ch))

		if ch.Type == channelTypeCategory {
			for _, sub := range channels {
				if sub.ParentID == ch.ID {
					targets = append(targets, newChannelTarget(t.client, t.user, t.id, sub))
				}
			}
		}
	}
	return targets, nil
}

func (t *target) CanEstimate() bool { return true }

// Estimate runs a single search and returns the server-reported total.
// The count is a best-effort figure: the index lags behind deletions.
func (t *target) Estimate(ctx context.Context, filters platform.Filters) (int, error) {
	params := t.searchParams(filters)
	for {
		results, err := t.client.Search(ctx, t.searchScope(), t.searchID(), params)
		if err != nil {
			if wait, ok := platform.IsRetry(err); ok {
				select {
				case <-ctx.Done():
					return 0, ctx.Err()
				case <-time.After(wait):
					continue
				}
			}
			return 0, err
		}
		return results.TotalResults, nil
	}
}

// Query returns a fresh candidate sequence over this target.
func (t *target) Query(filters platform.Filters) platform.Sequence {
	return &searchSequence{
		client: t.client,
		scope:  t.searchScope(),
		id:     t.searchID(),
		params: t.searchParams(filters),
		oldest: filters.Toggle("oldest"),
	}
}

func (t *target) searchScope() string {
	if t.kind == kindDM {
		return "channels"
	}
	return "guilds"
}

// searchID is the scope the search endpoint is addressed to: the DM
// channel itself, or the owning guild for guild and channel targets.
func (t *target) searchID() string {
	if t.parentID != "" {
		return t.parentID
	}
	return t.id
}

// searchParams translates the generic filter values into search query
// parameters. Date bounds become snowflake cursors.
func (t *target) searchParams(filters platform.Filters) url.Values {
	params := url.Values{}

	if r, ok := filters.Range("range"); ok {
		if !r.From.IsZero() {
			params.Set("min_id", timeToSnowflake(r.From))
		}
		if !r.To.IsZero() {
			params.Set("max_id", timeToSnowflake(r.To))
		}
	}
	if has := filters.Text("has"); has != "" {
		params.Set("has", has)
	}
	if content := filters.Text("content"); content != "" {
		params.Set("content", content)
	}
	if filters.Toggle("oldest") {
		params.Set("sort_by", "timestamp")
		params.Set("sort_order", "asc")
	}
	params.Set("author_id", t.user.ID)
	params.Set("include_nsfw", "true")

	if t.kind == kindChannel {
		params.Set("channel_id", t.id)
	}

	return params
}
