package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/kekst/socialnuke/pkg/platform"
)

func searchPage(ids ...string) SearchResults {
	res := SearchResults{TotalResults: len(ids)}
	for _, id := range ids {
		res.Messages = append(res.Messages, []resultMessage{
			{ID: id, ChannelID: "c1", Hit: true},
		})
	}
	return res
}

// drain pulls the sequence to completion, failing the test on
// unexpected steps, and returns the yielded candidate ids.
func drain(t *testing.T, seq platform.Sequence) []string {
	t.Helper()
	var ids []string
	for i := 0; i < 100; i++ {
		step := seq.Next(context.Background())
		switch step.Kind {
		case platform.StepItem:
			ids = append(ids, step.Item.ID())
		case platform.StepDone:
			return ids
		case platform.StepFail:
			t.Fatalf("sequence failed: %v", step.Err)
		case platform.StepWait:
			t.Fatalf("unexpected wait step")
		}
	}
	t.Fatal("sequence did not terminate")
	return nil
}

func TestSearchSequence_CursorAdvance(t *testing.T) {
	var cursors []string
	pages := []SearchResults{
		searchPage("10", "20", "30"),
		searchPage("40", "50"),
		{TotalResults: 0},
	}

	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursors = append(cursors, r.URL.Query().Get("min_id"))
		page := pages[call]
		call++
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	seq := &searchSequence{
		client: client,
		scope:  "channels",
		id:     "c1",
		params: url.Values{"sort_order": {"asc"}},
		oldest: true,
	}

	ids := drain(t, seq)

	want := []string{"10", "20", "30", "40", "50"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("yielded ids = %v, want %v", ids, want)
	}
	if cursors[0] != "" {
		t.Errorf("first request cursor = %q, want unset", cursors[0])
	}
	if cursors[1] != "30" {
		t.Errorf("second request cursor = %q, want %q", cursors[1], "30")
	}
	if cursors[2] != "50" {
		t.Errorf("third request cursor = %q, want %q", cursors[2], "50")
	}
}

func TestSearchSequence_DescendingUsesMaxID(t *testing.T) {
	var maxIDs []string
	pages := []SearchResults{
		searchPage("90", "80"),
		{TotalResults: 0},
	}

	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		maxIDs = append(maxIDs, r.URL.Query().Get("max_id"))
		page := pages[call]
		call++
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	seq := &searchSequence{
		client: client,
		scope:  "channels",
		id:     "c1",
		params: url.Values{},
	}

	ids := drain(t, seq)
	if len(ids) != 2 || ids[0] != "90" || ids[1] != "80" {
		t.Errorf("yielded ids = %v", ids)
	}
	if maxIDs[1] != "80" {
		t.Errorf("second request max_id = %q, want %q", maxIDs[1], "80")
	}
}

func TestSearchSequence_IndexingRetryRepeatsRequest(t *testing.T) {
	var queries []string
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		call++
		if call == 1 {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"document_indexed":0}`))
			return
		}
		json.NewEncoder(w).Encode(SearchResults{TotalResults: 0})
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	seq := &searchSequence{
		client: client,
		scope:  "channels",
		id:     "c1",
		params: url.Values{"author_id": {"42"}, "content": {"hi"}},
		oldest: true,
	}

	step := seq.Next(context.Background())
	if step.Kind != platform.StepWait {
		t.Fatalf("first step kind = %v, want wait", step.Kind)
	}
	if step.Wait != indexingDelay {
		t.Errorf("wait = %v, want %v", step.Wait, indexingDelay)
	}

	step = seq.Next(context.Background())
	if step.Kind != platform.StepDone {
		t.Fatalf("second step kind = %v, want done", step.Kind)
	}

	if len(queries) != 2 || queries[0] != queries[1] {
		t.Errorf("retry did not repeat the identical request: %q vs %q", queries[0], queries[1])
	}
}

func TestSearchSequence_EmptyResultTerminates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(SearchResults{TotalResults: 0})
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	seq := &searchSequence{client: client, scope: "channels", id: "c1", params: url.Values{}}

	if ids := drain(t, seq); len(ids) != 0 {
		t.Errorf("yielded %v, want none", ids)
	}
	if calls != 1 {
		t.Errorf("search calls = %d, want 1", calls)
	}
	// Exhausted sequences stay exhausted.
	if step := seq.Next(context.Background()); step.Kind != platform.StepDone {
		t.Errorf("step after done = %v", step.Kind)
	}
}

func TestSearchSequence_ForbiddenFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	seq := &searchSequence{client: client, scope: "guilds", id: "g1", params: url.Values{}}

	step := seq.Next(context.Background())
	if step.Kind != platform.StepFail {
		t.Fatalf("step kind = %v, want fail", step.Kind)
	}
	if !platform.IsUnauthorized(step.Err) {
		t.Errorf("err = %v, want unauthorized", step.Err)
	}
	// Failure is sticky.
	if step := seq.Next(context.Background()); step.Kind != platform.StepFail {
		t.Errorf("step after fail = %v", step.Kind)
	}
}

func TestReduceHits(t *testing.T) {
	groups := [][]resultMessage{
		{
			{ID: "1", Hit: false},
			{ID: "2", Hit: true},
			{ID: "3", Hit: false},
		},
		{
			{ID: "4", Hit: false},
		},
		{},
	}

	hits := reduceHits(groups)
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].ID != "2" {
		t.Errorf("hits[0] = %s, want the flagged hit", hits[0].ID)
	}
	// No flagged element: fall back to the first of the group.
	if hits[1].ID != "4" {
		t.Errorf("hits[1] = %s, want 4", hits[1].ID)
	}
}
