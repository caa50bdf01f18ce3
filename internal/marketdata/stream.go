package marketdata

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
)

// reconnectDelay paces stream reconnection attempts.
const reconnectDelay = 5 * time.Second

// Stream consumes the live trade websocket and writes prices into the
// PriceCache. Subscriptions survive reconnects.
type Stream struct {
	url   string
	cache *PriceCache
	log   *logger.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	symbols map[string]struct{}
}

// NewStream creates a stream writer for the given cache.
func NewStream(cfg *config.Config, cache *PriceCache, log *logger.Logger) *Stream {
	return &Stream{
		url:     cfg.MarketData.StreamURL,
		cache:   cache,
		log:     log.WithComponent("stream"),
		symbols: make(map[string]struct{}),
	}
}

// Subscribe adds tickers to the live subscription set.
func (s *Stream) Subscribe(tickers ...string) {
	s.mu.Lock()
	conn := s.conn
	added := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := s.symbols[t]; !ok {
			s.symbols[t] = struct{}{}
			added = append(added, t)
		}
	}
	s.mu.Unlock()

	if conn != nil && len(added) > 0 {
		s.sendSubscribe(conn, added)
	}
}

// Run connects and pumps messages until ctx is cancelled, reconnecting
// on failure. Blocking; run in a goroutine.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.connectAndPump(ctx); err != nil {
			s.log.Warnf("stream disconnected, reconnecting: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Stream) connectAndPump(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.mu.Lock()
	s.conn = conn
	current := make([]string, 0, len(s.symbols))
	for t := range s.symbols {
		current = append(current, t)
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}()

	if len(current) > 0 {
		s.sendSubscribe(conn, current)
	}

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.handleMessage(data)
	}
}

func (s *Stream) sendSubscribe(conn *websocket.Conn, tickers []string) {
	msg := map[string][]string{"subscribe": tickers}
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warnf("subscribe send failed: %v", err)
	}
}

// tradeMessage is a single trade tick.
type tradeMessage struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

func (s *Stream) handleMessage(data []byte) {
	var msg tradeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Debugf("unparseable stream message: %v", err)
		return
	}
	if msg.ID == "" || msg.Price <= 0 {
		return
	}
	s.cache.Set(msg.ID, msg.Price)
}
