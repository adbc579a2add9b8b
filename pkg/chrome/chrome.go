// Package chrome connects to an existing Chrome/Chromium session over
// the DevTools protocol and captures platform auth tokens by watching
// the network traffic of a login tab.
package chrome

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Session represents a connection to a Chrome browser.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// Config holds configuration for connecting to Chrome.
type Config struct {
	// DebugPort is the Chrome DevTools Protocol port (default: 9222)
	DebugPort int

	// Timeout for the initial connection test
	Timeout time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebugPort: 9222,
		Timeout:   30 * time.Second,
	}
}

// Connect establishes a connection to an existing Chrome browser. The
// browser must be started with remote debugging enabled:
//
//	chrome --remote-debugging-port=9222
func Connect(ctx context.Context, cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	debugURL := fmt.Sprintf("ws://127.0.0.1:%d", cfg.DebugPort)

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, debugURL)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Probe the connection before handing the session out.
	testCtx, testCancel := context.WithTimeout(browserCtx, cfg.Timeout)
	defer testCancel()

	var title string
	if err := chromedp.Run(testCtx, chromedp.Title(&title)); err != nil {
		allocCancel()
		cancel()
		return nil, fmt.Errorf("failed to connect to browser at %s: %w", debugURL, err)
	}

	return &Session{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
	}, nil
}

// Close releases all resources associated with the session.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
}
