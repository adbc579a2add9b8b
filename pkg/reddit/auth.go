package reddit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/google/uuid"
)

// Endpoint is Reddit's OAuth 2.0 endpoint.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://www.reddit.com/api/v1/authorize",
	TokenURL: "https://www.reddit.com/api/v1/access_token",
}

// scopes covers identity lookup, reading the profile listings, and
// deleting own content.
var scopes = []string{"identity", "history", "read", "edit"}

// AuthConfig configures the interactive OAuth flow. ClientID is an
// "installed app" registered at https://www.reddit.com/prefs/apps with
// redirect URI http://localhost:8086/callback.
type AuthConfig struct {
	ClientID     string
	CallbackAddr string // default ":8086"
}

// NewTokenFlow returns a TokenFlowFunc that runs the code flow through
// a local callback server and the user's browser.
func NewTokenFlow(cfg AuthConfig) TokenFlowFunc {
	return func(ctx context.Context) (string, error) {
		return tokenFromWeb(ctx, cfg)
	}
}

func tokenFromWeb(ctx context.Context, cfg AuthConfig) (string, error) {
	if cfg.ClientID == "" {
		return "", fmt.Errorf("reddit client ID not configured")
	}
	addr := cfg.CallbackAddr
	if addr == "" {
		addr = ":8086"
	}

	oauthConfig := &oauth2.Config{
		ClientID:    cfg.ClientID,
		Endpoint:    Endpoint,
		RedirectURL: "http://localhost" + addr + "/callback",
		Scopes:      scopes,
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			errCh <- fmt.Errorf("state mismatch in callback")
			fmt.Fprint(w, "Error: state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errCh <- fmt.Errorf("no code in callback: %s", r.URL.Query().Get("error"))
			fmt.Fprint(w, "Error: no authorization code received")
			return
		}
		codeCh <- code
		fmt.Fprint(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>")
	})

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer server.Close()

	authURL := oauthConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("duration", "temporary"))
	fmt.Println()
	fmt.Println("To log in to Reddit, visit this URL in your browser:")
	fmt.Println()
	fmt.Println("  ", authURL)
	fmt.Println()
	fmt.Println("Waiting for authorization...")

	var code string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case code = <-codeCh:
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	token, err := oauthConfig.Exchange(exchangeCtx, code)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	return token.AccessToken, nil
}
