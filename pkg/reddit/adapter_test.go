package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

func listingJSON(after string, things ...thing) string {
	type child struct {
		Data thing `json:"data"`
	}
	var children []child
	for _, th := range things {
		children = append(children, child{Data: th})
	}
	payload := map[string]any{
		"data": map[string]any{
			"after":    after,
			"children": children,
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestListingSequence_Pagination(t *testing.T) {
	var afters []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after")
		afters = append(afters, after)
		switch after {
		case "":
			fmt.Fprint(w, listingJSON("t1_b",
				thing{Fullname: "t1_a", Body: "first", CreatedUTC: 100},
				thing{Fullname: "t1_b", Body: "second", CreatedUTC: 90},
			))
		case "t1_b":
			fmt.Fprint(w, listingJSON("",
				thing{Fullname: "t1_c", Body: "third", CreatedUTC: 80},
			))
		default:
			t.Errorf("unexpected after cursor %q", after)
			fmt.Fprint(w, listingJSON(""))
		}
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))
	seq := &listingSequence{client: client, user: "alice", kind: "comments", filters: platform.Filters{}}

	var ids []string
	for {
		step := seq.Next(context.Background())
		if step.Kind == platform.StepDone {
			break
		}
		if step.Kind != platform.StepItem {
			t.Fatalf("unexpected step %v (err %v)", step.Kind, step.Err)
		}
		ids = append(ids, step.Item.ID())
	}

	want := []string{"t1_a", "t1_b", "t1_c"}
	if len(ids) != len(want) {
		t.Fatalf("got %d items %v, want %v", len(ids), ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, ids[i], want[i])
		}
	}
	if len(afters) != 2 || afters[0] != "" || afters[1] != "t1_b" {
		t.Errorf("cursors requested = %v, want [\"\" t1_b]", afters)
	}
}

func TestListingSequence_FiltersAdvanceCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if after := r.URL.Query().Get("after"); after != "" {
			// Every item of the first page was filtered out; the cursor
			// must still have moved past it.
			if after != "t1_b" {
				t.Errorf("after = %q, want t1_b", after)
			}
			fmt.Fprint(w, listingJSON("", thing{Fullname: "t1_c", Body: "keep this", CreatedUTC: 80}))
			return
		}
		fmt.Fprint(w, listingJSON("t1_b",
			thing{Fullname: "t1_a", Body: "skip", CreatedUTC: 100},
			thing{Fullname: "t1_b", Body: "skip too", CreatedUTC: 90},
		))
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))
	seq := &listingSequence{
		client:  client,
		user:    "alice",
		kind:    "comments",
		filters: platform.Filters{"content": "keep"},
	}

	step := seq.Next(context.Background())
	if step.Kind != platform.StepItem || step.Item.ID() != "t1_c" {
		t.Fatalf("step = %v item %v, want item t1_c", step.Kind, step.Item)
	}
	if step := seq.Next(context.Background()); step.Kind != platform.StepDone {
		t.Fatalf("step = %v, want done", step.Kind)
	}
}

func TestListingSequence_DateRange(t *testing.T) {
	seq := &listingSequence{
		filters: platform.Filters{"range": platform.DateRange{
			From: time.Unix(90, 0),
			To:   time.Unix(110, 0),
		}},
	}

	tests := []struct {
		name string
		th   thing
		want bool
	}{
		{"inside", thing{CreatedUTC: 100}, true},
		{"too old", thing{CreatedUTC: 50}, false},
		{"too new", thing{CreatedUTC: 200}, false},
		{"on lower bound", thing{CreatedUTC: 90}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := seq.match(tt.th); got != tt.want {
				t.Errorf("match(created=%v) = %v, want %v", tt.th.CreatedUTC, got, tt.want)
			}
		})
	}
}

func TestDelete_Classification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   platform.OutcomeKind
	}{
		{"deleted", http.StatusOK, platform.OutcomeOK},
		{"forbidden", http.StatusForbidden, platform.OutcomeFatal},
		{"rate limited", http.StatusTooManyRequests, platform.OutcomeRetry},
		{"server error", http.StatusInternalServerError, platform.OutcomeRetry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/del" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if err := r.ParseForm(); err == nil && r.PostForm.Get("id") != "t3_x" {
					t.Errorf("id = %q, want t3_x", r.PostForm.Get("id"))
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, "{}")
			}))
			defer server.Close()

			item := &listingItem{
				client: NewClient("tok", WithBaseURL(server.URL)),
				thing:  thing{Fullname: "t3_x"},
			}
			if got := item.Delete(context.Background()); got.Kind != tt.want {
				t.Errorf("Delete() = %v, want %v", got.Kind, tt.want)
			}
		})
	}
}

func TestMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		fmt.Fprint(w, `{"id": "abc", "name": "alice", "icon_img": "https://img/x.png?width=64"}`)
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))
	me, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() = %v", err)
	}
	if me.Name != "alice" || me.ID != "abc" {
		t.Errorf("Me() = %+v", me)
	}
}

func TestMe_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient("tok", WithBaseURL(server.URL))
	if _, err := client.Me(context.Background()); !platform.IsUnauthorized(err) {
		t.Errorf("Me() error = %v, want unauthorized", err)
	}
}
