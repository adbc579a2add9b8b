package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kekst/socialnuke/pkg/platform"
)

const (
	defaultBaseURL = "https://discord.com/api/v9"
	cdnBaseURL     = "https://cdn.discordapp.com"
	defaultTimeout = 30 * time.Second

	// Fallback backoffs when the server does not say how long to wait.
	throttleDelay = 1 * time.Second // HTTP-level rate limiting
	indexingDelay = 2 * time.Second // search index not ready yet
)

// Client issues authenticated calls against the Discord REST API and
// classifies every response into ok, retry-after, or unauthorized.
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

// NewClient creates a client bound to one user token.
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

// do performs one request with the auth header set.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// getJSON fetches path and decodes the body into result. A 403 maps to
// ErrUnauthorized; any other non-200 maps to a RetryError.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, result interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: %w", path, platform.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return &platform.RetryError{After: retryAfterHeader(resp, throttleDelay)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// getList fetches path and decodes a JSON array. A non-array payload
// means the token is not accepted (Discord returns an error object),
// so it maps to ErrUnauthorized.
func (c *Client) getList(ctx context.Context, path string, result interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: %w", path, platform.ErrUnauthorized)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return fmt.Errorf("%s: expected array: %w", path, platform.ErrUnauthorized)
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Me returns the user behind the client's token.
func (c *Client) Me(ctx context.Context) (discordUser, error) {
	var u discordUser
	if err := c.getJSON(ctx, "users/@me", nil, &u); err != nil {
		return discordUser{}, err
	}
	if u.ID == "" {
		return discordUser{}, fmt.Errorf("users/@me: empty user: %w", platform.ErrUnauthorized)
	}
	return u, nil
}

// DMChannels lists the user's DM and group DM channels.
func (c *Client) DMChannels(ctx context.Context) ([]dmChannel, error) {
	var channels []dmChannel
	if err := c.getList(ctx, "users/@me/channels", &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// Guilds lists the user's guilds.
func (c *Client) Guilds(ctx context.Context) ([]guild, error) {
	var guilds []guild
	if err := c.getList(ctx, "users/@me/guilds", &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// GuildChannels lists the channels of one guild.
func (c *Client) GuildChannels(ctx context.Context, guildID string) ([]guildChannel, error) {
	var channels []guildChannel
	if err := c.getList(ctx, "guilds/"+guildID+"/channels", &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// Search runs one page of the message search endpoint. scope is
// "channels" for DMs or "guilds" for guild-wide search.
//
// Classification: 403 is unauthorized and terminal; a payload carrying
// document_indexed means the search index is still catching up and the
// identical request should be retried after the suggested delay; any
// other non-success status is optimistically treated as throttling.
func (c *Client) Search(ctx context.Context, scope, id string, query url.Values) (*SearchResults, error) {
	path := fmt.Sprintf("%s/%s/messages/search", scope, id)
	resp, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("search %s/%s: %w", scope, id, platform.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, &platform.RetryError{After: retryAfterHeader(resp, throttleDelay)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var results SearchResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	if results.DocumentIndexed != nil {
		after := indexingDelay
		if results.RetryAfter > 0 {
			after = time.Duration(results.RetryAfter * float64(time.Second))
		}
		return nil, &platform.RetryError{After: after}
	}

	return &results, nil
}

// DeleteMessage deletes one message. A 204 is success, a 403 is a
// per-item fatal condition, anything else asks for a backoff.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("channels/%s/messages/%s", channelID, messageID)
	resp, err := c.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("delete %s: %w", messageID, platform.ErrUnauthorized)
	default:
		return &platform.RetryError{After: retryAfterHeader(resp, throttleDelay)}
	}
}

// retryAfterHeader parses a Retry-After header in seconds, returning
// fallback when absent or unparseable.
func retryAfterHeader(resp *http.Response, fallback time.Duration) time.Duration {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
