package chrome

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// CaptureToken opens loginURL in a fresh tab and waits until the page
// issues a request against apiPrefix that carries an Authorization
// header, then returns that header value. The user completes the login
// in the browser; the first authenticated API call reveals the token.
func (s *Session) CaptureToken(ctx context.Context, loginURL, apiPrefix string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(s.ctx)
	defer cancel()

	tokenCh := make(chan string, 1)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		req, ok := ev.(*network.EventRequestWillBeSent)
		if !ok {
			return
		}
		if !strings.HasPrefix(req.Request.URL, apiPrefix) {
			return
		}
		if auth := authorizationHeader(req.Request.Headers); auth != "" {
			select {
			case tokenCh <- auth:
			default:
			}
		}
	})

	if err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(loginURL),
	); err != nil {
		return "", fmt.Errorf("failed to open login page: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-tabCtx.Done():
		return "", fmt.Errorf("login tab closed before a token was seen")
	case token := <-tokenCh:
		return token, nil
	}
}

// authorizationHeader pulls the Authorization header out of a CDP
// header map regardless of casing.
func authorizationHeader(headers network.Headers) string {
	for k, v := range headers {
		if strings.EqualFold(k, "authorization") {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
