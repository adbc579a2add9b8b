package reddit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

// TokenFlowFunc obtains an access token for the authenticated user,
// normally by running the OAuth 2.0 code flow in a browser.
type TokenFlowFunc func(ctx context.Context) (string, error)

// Reddit is the Reddit platform adapter.
type Reddit struct {
	tokenFlow  TokenFlowFunc
	clientOpts []ClientOption

	mu    sync.Mutex
	users map[string]redditUser // token -> identity, avoids repeated Me calls
}

// Option configures the adapter.
type Option func(*Reddit)

// WithTokenFlow sets the function used to obtain new tokens.
func WithTokenFlow(flow TokenFlowFunc) Option {
	return func(r *Reddit) {
		r.tokenFlow = flow
	}
}

// WithClientOptions forwards options to every client the adapter builds.
func WithClientOptions(opts ...ClientOption) Option {
	return func(r *Reddit) {
		r.clientOpts = opts
	}
}

// New creates the adapter.
func New(opts ...Option) *Reddit {
	r := &Reddit{users: make(map[string]redditUser)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reddit) Key() string  { return "reddit" }
func (r *Reddit) Name() string { return "Reddit" }

// Delay is the pause between delete calls. Reddit's OAuth quota is 60
// requests per minute, and every item costs a listing share plus one
// delete call.
func (r *Reddit) Delay() time.Duration { return 1100 * time.Millisecond }

func (r *Reddit) Features() platform.Features {
	return platform.Features{Purge: true, Dump: true}
}

func (r *Reddit) TargetTypes() []platform.TargetType {
	return []platform.TargetType{
		{Key: "posts", Name: "Posts"},
		{Key: "comments", Name: "Comments"},
	}
}

func (r *Reddit) FilterSpecs() []platform.FilterSpec {
	return []platform.FilterSpec{
		{
			Key:   "content",
			Title: "Containing text",
			Kind:  platform.FilterText,
		},
		{
			Key:   "range",
			Title: "Date range",
			Kind:  platform.FilterDateRange,
		},
	}
}

// TokenFlow runs the configured browser flow.
func (r *Reddit) TokenFlow(ctx context.Context) (string, error) {
	if r.tokenFlow == nil {
		return "", fmt.Errorf("no token flow configured for Reddit")
	}
	return r.tokenFlow(ctx)
}

// WithToken verifies the token and returns an actor for its user.
func (r *Reddit) WithToken(ctx context.Context, token string) (platform.Actor, error) {
	r.mu.Lock()
	user, ok := r.users[token]
	r.mu.Unlock()

	if !ok {
		client := NewClient(token, r.clientOpts...)
		me, err := client.Me(ctx)
		if err != nil {
			return nil, err
		}
		user = me
		r.mu.Lock()
		r.users[token] = user
		r.mu.Unlock()
	}

	return &actor{
		client: NewClient(token, r.clientOpts...),
		user:   user,
	}, nil
}

type actor struct {
	client *Client
	user   redditUser
}

func (a *actor) User() platform.User {
	return platform.User{
		ID:      a.user.ID,
		Name:    "u/" + a.user.Name,
		IconURL: strings.SplitN(a.user.IconImg, "?", 2)[0],
	}
}

// Targets returns one target per listing kind. Reddit has no channel
// hierarchy to enumerate, the profile listing is the whole universe.
func (a *actor) Targets(ctx context.Context, typeKey string) ([]platform.Target, error) {
	switch typeKey {
	case "posts":
		return []platform.Target{&listingTarget{actor: a, kind: "submitted", name: "Your posts"}}, nil
	case "comments":
		return []platform.Target{&listingTarget{actor: a, kind: "comments", name: "Your comments"}}, nil
	default:
		return nil, fmt.Errorf("unknown target type %q", typeKey)
	}
}

// listingTarget walks one of the user's profile listings.
type listingTarget struct {
	actor *actor
	kind  string // "submitted" or "comments"
	name  string
}

func (t *listingTarget) ID() string          { return t.kind }
func (t *listingTarget) ParentID() string    { return "" }
func (t *listingTarget) Name() string        { return t.name }
func (t *listingTarget) IconURL() string     { return t.actor.User().IconURL }
func (t *listingTarget) Type() string        { return t.kind }
func (t *listingTarget) Disabled() bool      { return false }
func (t *listingTarget) User() platform.User { return t.actor.User() }
func (t *listingTarget) HasChildren() bool   { return false }

func (t *listingTarget) Children(ctx context.Context) ([]platform.Target, error) {
	return nil, nil
}

// CanEstimate is false: the listing API reports no total, only pages.
func (t *listingTarget) CanEstimate() bool { return false }

func (t *listingTarget) Estimate(ctx context.Context, filters platform.Filters) (int, error) {
	return 0, fmt.Errorf("reddit listings cannot be estimated")
}

func (t *listingTarget) Query(filters platform.Filters) platform.Sequence {
	return &listingSequence{
		client:  t.actor.client,
		user:    t.actor.user.Name,
		kind:    t.kind,
		filters: filters,
	}
}

// listingSequence pages the profile listing by fullname cursor and
// applies filters client-side, since the listing API cannot.
type listingSequence struct {
	client  *Client
	user    string
	kind    string
	filters platform.Filters

	after   string
	pending []thing
	done    bool
	failed  error
}

func (s *listingSequence) Next(ctx context.Context) platform.Step {
	if s.failed != nil {
		return platform.Step{Kind: platform.StepFail, Err: s.failed}
	}

	for {
		if len(s.pending) > 0 {
			th := s.pending[0]
			s.pending = s.pending[1:]
			// The cursor has to advance past skipped things too,
			// otherwise a page of filtered-out items would loop.
			s.after = th.Fullname
			if !s.match(th) {
				continue
			}
			return platform.Step{
				Kind: platform.StepItem,
				Item: &listingItem{client: s.client, thing: th, user: s.user},
			}
		}

		if s.done {
			return platform.Step{Kind: platform.StepDone}
		}

		page, err := s.client.Listing(ctx, s.user, s.kind, s.after)
		if err != nil {
			if wait, ok := platform.IsRetry(err); ok {
				return platform.Step{Kind: platform.StepWait, Wait: wait}
			}
			if platform.IsUnauthorized(err) || ctx.Err() != nil {
				s.failed = err
				return platform.Step{Kind: platform.StepFail, Err: err}
			}
			return platform.Step{Kind: platform.StepWait, Wait: throttleDelay}
		}

		if len(page.Things) == 0 {
			s.done = true
			return platform.Step{Kind: platform.StepDone}
		}
		if page.After == "" {
			// Last page: drain what we got, then stop.
			s.done = true
		}
		s.pending = page.Things
	}
}

func (s *listingSequence) match(th thing) bool {
	if text := s.filters.Text("content"); text != "" {
		if !strings.Contains(strings.ToLower(th.text()), strings.ToLower(text)) {
			return false
		}
	}
	if rng, ok := s.filters.Range("range"); ok {
		created := th.created()
		if !rng.From.IsZero() && created.Before(rng.From) {
			return false
		}
		if !rng.To.IsZero() && created.After(rng.To) {
			return false
		}
	}
	return true
}

type listingItem struct {
	client *Client
	thing  thing
	user   string
}

func (i *listingItem) ID() string { return i.thing.Fullname }

func (i *listingItem) Delete(ctx context.Context) platform.Outcome {
	err := i.client.Del(ctx, i.thing.Fullname)
	if err == nil {
		return platform.OK()
	}
	if wait, ok := platform.IsRetry(err); ok {
		return platform.Retry(wait)
	}
	return platform.Fatal(err)
}

func (i *listingItem) Snapshot() platform.Snapshot {
	return platform.Snapshot{
		ID:         i.thing.Fullname,
		ChannelID:  i.thing.Subreddit,
		AuthorName: i.user,
		Content:    i.thing.text(),
		Timestamp:  i.thing.created(),
	}
}
