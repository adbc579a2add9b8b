package discord

import (
	"context"
	"net/url"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

// searchSequence is a forward-only lazy sequence of deletion candidates
// produced by paging the message search endpoint. The cursor (min_id in
// oldest-first mode, max_id otherwise) advances to the last yielded id
// only after the buffered page is fully drained, so a retry always
// re-issues the identical request.
type searchSequence struct {
	client *Client
	scope  string // "channels" or "guilds"
	id     string
	params url.Values
	oldest bool

	pending []resultMessage
	lastID  string
	done    bool
	failed  error
}

func (s *searchSequence) Next(ctx context.Context) platform.Step {
	if s.failed != nil {
		return platform.Step{Kind: platform.StepFail, Err: s.failed}
	}

	if len(s.pending) > 0 {
		msg := s.pending[0]
		s.pending = s.pending[1:]
		return platform.Step{Kind: platform.StepItem, Item: &message{client: s.client, msg: msg}}
	}

	if s.done {
		return platform.Step{Kind: platform.StepDone}
	}

	// Advance the cursor past the previous page before fetching.
	if s.lastID != "" {
		if s.oldest {
			s.params.Set("min_id", s.lastID)
		} else {
			s.params.Set("max_id", s.lastID)
		}
	}

	results, err := s.client.Search(ctx, s.scope, s.id, s.params)
	if err != nil {
		if wait, ok := platform.IsRetry(err); ok {
			return platform.Step{Kind: platform.StepWait, Wait: wait}
		}
		if platform.IsUnauthorized(err) {
			s.failed = err
			return platform.Step{Kind: platform.StepFail, Err: err}
		}
		if ctx.Err() != nil {
			s.failed = ctx.Err()
			return platform.Step{Kind: platform.StepFail, Err: s.failed}
		}
		// Unknown network or parse trouble: assume it is transient.
		return platform.Step{Kind: platform.StepWait, Wait: throttleDelay}
	}

	if results.TotalResults == 0 || len(results.Messages) == 0 {
		s.done = true
		return platform.Step{Kind: platform.StepDone}
	}

	hits := reduceHits(results.Messages)
	if len(hits) == 0 {
		s.done = true
		return platform.Step{Kind: platform.StepDone}
	}

	s.lastID = hits[len(hits)-1].ID
	msg := hits[0]
	s.pending = hits[1:]
	return platform.Step{Kind: platform.StepItem, Item: &message{client: s.client, msg: msg}}
}

// reduceHits collapses each match group (the hit plus surrounding
// context) to the single message flagged as the actual hit.
func reduceHits(groups [][]resultMessage) []resultMessage {
	hits := make([]resultMessage, 0, len(groups))
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		hit := group[0]
		for _, m := range group {
			if m.Hit {
				hit = m
			}
		}
		hits = append(hits, hit)
	}
	return hits
}

// message is one deletable search hit.
type message struct {
	client *Client
	msg    resultMessage
}

func (m *message) ID() string { return m.msg.ID }

func (m *message) Delete(ctx context.Context) platform.Outcome {
	err := m.client.DeleteMessage(ctx, m.msg.ChannelID, m.msg.ID)
	switch {
	case err == nil:
		return platform.OK()
	default:
		if wait, ok := platform.IsRetry(err); ok {
			return platform.Retry(wait)
		}
		return platform.Fatal(err)
	}
}

func (m *message) Snapshot() platform.Snapshot {
	snap := platform.Snapshot{
		ID:         m.msg.ID,
		ChannelID:  m.msg.ChannelID,
		AuthorID:   m.msg.Author.ID,
		AuthorName: m.msg.Author.displayName(),
		Content:    m.msg.Content,
	}
	if ts, err := time.Parse(time.RFC3339, m.msg.Timestamp); err == nil {
		snap.Timestamp = ts
	}
	for _, a := range m.msg.Attachments {
		snap.Attachments = append(snap.Attachments, a.URL)
	}
	return snap
}
