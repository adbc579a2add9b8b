// Package reddit implements the Reddit platform adapter. Deletable
// targets are the authenticated user's own posts and comments,
// enumerated through the profile listing API.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

const (
	defaultBaseURL = "https://oauth.reddit.com"
	defaultTimeout = 30 * time.Second
	listingLimit   = 100

	throttleDelay = 1 * time.Second
)

// Client issues authenticated calls against the Reddit OAuth API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(u string) ClientOption {
	return func(client *Client) {
		client.baseURL = u
	}
}

// NewClient creates a client bound to one access token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request. Reddit classifies like Discord: 403 is
// terminal, any other non-200 is optimistically treated as throttling.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%s: %w", path, platform.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &platform.RetryError{After: throttleDelay}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// redditUser is the payload of /api/v1/me.
type redditUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconImg string `json:"icon_img"`
}

// Me returns the user behind the client's token.
func (c *Client) Me(ctx context.Context) (redditUser, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/me?raw_json=1", nil)
	if err != nil {
		return redditUser{}, err
	}
	var u redditUser
	if err := json.Unmarshal(data, &u); err != nil {
		return redditUser{}, fmt.Errorf("failed to parse user: %w", err)
	}
	if u.Name == "" {
		return redditUser{}, fmt.Errorf("/api/v1/me: empty user: %w", platform.ErrUnauthorized)
	}
	return u, nil
}

// thing is one entry of a profile listing.
type thing struct {
	Fullname   string  `json:"name"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	Selftext   string  `json:"selftext"`
	Subreddit  string  `json:"subreddit"`
	CreatedUTC float64 `json:"created_utc"`
}

func (t thing) text() string {
	if t.Title != "" {
		return t.Title
	}
	if t.Body != "" {
		return t.Body
	}
	return t.Selftext
}

func (t thing) created() time.Time {
	return time.Unix(int64(t.CreatedUTC), 0).UTC()
}

// listingPage is one page of a profile listing.
type listingPage struct {
	After  string
	Things []thing
}

// Listing fetches one page of the user's posts ("submitted") or
// comments, starting after the given fullname cursor.
func (c *Client) Listing(ctx context.Context, username, kind, after string) (*listingPage, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprint(listingLimit))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}

	path := fmt.Sprintf("/user/%s/%s?%s", username, kind, params.Encode())
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data struct {
			After    string `json:"after"`
			Children []struct {
				Data thing `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	page := &listingPage{After: payload.Data.After}
	for _, child := range payload.Data.Children {
		page.Things = append(page.Things, child.Data)
	}
	return page, nil
}

// Del deletes one thing by fullname.
func (c *Client) Del(ctx context.Context, fullname string) error {
	form := url.Values{}
	form.Set("id", fullname)
	_, err := c.do(ctx, http.MethodPost, "/api/del", form)
	return err
}
