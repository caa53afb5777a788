// Package power consumes the live power-usage feed for the dashboard
// chart. The feed is display-only: the consumer keeps the most recent
// fixed-size window of samples and does no other processing.
package power

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WindowSize is how many samples the chart shows.
const WindowSize = 20

type Sample struct {
	Power float64   `json:"power"`
	At    time.Time `json:"at"`
}

// powerMessage is one pushed frame from the estate hub.
type powerMessage struct {
	Power float64 `json:"power"`
}

type Feed struct {
	wsURL string
	retry time.Duration

	mu     sync.RWMutex
	window []Sample

	lg zerolog.Logger
}

func NewFeed(wsURL string) *Feed {
	return &Feed{
		wsURL:  wsURL,
		retry:  5 * time.Second,
		window: make([]Sample, 0, WindowSize),
		lg:     zerolog.New(os.Stdout).With().Str("Module", "PowerFeed").Timestamp().Logger(),
	}
}

// Run consumes the feed until ctx is cancelled, reconnecting with a flat
// delay when the socket drops. The bearer token travels as a query
// parameter and is re-read from tokens on every dial, so a re-login with
// a fresh token takes effect at the next reconnect.
func (f *Feed) Run(ctx context.Context, tokens func() string) error {
	if tokens == nil {
		return fmt.Errorf("power feed requires a token source")
	}

	for {
		if token := tokens(); token == "" {
			f.lg.Debug().Msg("No feed token yet, waiting")
		} else if err := f.consume(ctx, token); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.lg.Warn().Err(err).Msg("Power feed disconnected, retrying")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.retry):
		}
	}
}

func (f *Feed) consume(ctx context.Context, token string) error {
	u, err := url.Parse(f.wsURL)
	if err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("feed dial error: %w", err)
	}
	defer conn.Close()

	f.lg.Info().Str("url", f.wsURL).Msg("Power feed connected")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg powerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("feed read error: %w", err)
		}
		f.push(Sample{Power: msg.Power, At: time.Now()})
	}
}

func (f *Feed) push(s Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.window = append(f.window, s)
	if len(f.window) > WindowSize {
		f.window = f.window[len(f.window)-WindowSize:]
	}
}

// Window returns a copy of the current sample window, oldest first.
func (f *Feed) Window() []Sample {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Sample, len(f.window))
	copy(out, f.window)
	return out
}

// Latest returns the most recent sample, if any arrived yet.
func (f *Feed) Latest() (Sample, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.window) == 0 {
		return Sample{}, false
	}
	return f.window[len(f.window)-1], true
}
