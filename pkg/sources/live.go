package sources

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/biglyan/mapd-charting/pkg/choropleth"
)

// LiveFeed streams key/value rows from a websocket endpoint. The feed
// reconnects with exponential backoff and accumulates the latest value
// per key so the chart can redraw from a consistent snapshot.
type LiveFeed struct {
	URL string

	// Subscribe, when non-empty, is sent as a text message right after
	// each (re)connect.
	Subscribe string

	mu     sync.Mutex
	latest map[string]float64
	dirty  bool
}

// NewLiveFeed builds a feed for the given websocket URL.
func NewLiveFeed(url string) *LiveFeed {
	return &LiveFeed{
		URL:    url,
		latest: make(map[string]float64),
	}
}

type liveMessage struct {
	Type string `json:"type"`
	Rows []struct {
		Key   string  `json:"key"`
		Value float64 `json:"value"`
	} `json:"rows"`
}

// Run connects and consumes messages until the context is cancelled.
func (f *LiveFeed) Run(ctx context.Context) {
	backoff := 1 * time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Connecting to live feed: %s", f.URL)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, f.URL, nil)
		if err != nil {
			log.Printf("Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff *= 2
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		if f.Subscribe != "" {
			if err := c.WriteMessage(websocket.TextMessage, []byte(f.Subscribe)); err != nil {
				log.Printf("Subscribe error: %v", err)
				c.Close()
				continue
			}
		}

		// Close the socket when the context ends so ReadMessage unblocks.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-done:
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("Read error: %v. Reconnecting...", err)
				}
				break
			}
			f.consume(message)
		}
		close(done)
		c.Close()

		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return
		}
	}
}

func (f *LiveFeed) consume(message []byte) {
	var msg liveMessage
	if json.Unmarshal(message, &msg) != nil {
		return
	}
	if msg.Type == "error" {
		log.Printf("[FEED ERROR] %s", string(message))
		return
	}
	if len(msg.Rows) == 0 {
		return
	}
	f.mu.Lock()
	for _, row := range msg.Rows {
		f.latest[row.Key] = row.Value
	}
	f.dirty = true
	f.mu.Unlock()
}

// Snapshot returns the accumulated rows and whether anything changed
// since the previous call.
func (f *LiveFeed) Snapshot() ([]choropleth.Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.dirty
	f.dirty = false
	rows := make([]choropleth.Row, 0, len(f.latest))
	for key, value := range f.latest {
		rows = append(rows, choropleth.KV{Key: key, Value: value})
	}
	return rows, changed
}
