package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/logger"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const binanceStreamURL = "wss://stream.binance.com:9443/ws"

// BinanceStream subscribes to the mini-ticker websocket stream for
// latest-price updates
type BinanceStream struct {
	baseURL string
	dialer  *websocket.Dialer
}

// NewBinanceStream creates a stream client
func NewBinanceStream() *BinanceStream {
	return &BinanceStream{
		baseURL: binanceStreamURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

type miniTickerMessage struct {
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	EventTime int64  `json:"E"`
}

// Subscribe opens the stream and delivers price updates until the context is
// canceled. The channel is closed when the stream ends.
func (s *BinanceStream) Subscribe(ctx context.Context, symbol string) (<-chan PriceUpdate, error) {
	endpoint := fmt.Sprintf("%s/%s@miniTicker", s.baseURL, strings.ToLower(normalizeSymbol(symbol)))

	conn, _, err := s.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, &DataFetchError{Symbol: symbol, Op: "stream", Err: err}
	}

	updates := make(chan PriceUpdate)

	go func() {
		defer close(updates)
		defer conn.Close()

		// Unblock ReadMessage when the caller cancels
		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					logger.Component("exchange").WithError(err).Warn("price stream closed",
						"symbol", symbol)
				}
				return
			}

			var msg miniTickerMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				continue
			}

			price, err := decimal.NewFromString(msg.Close)
			if err != nil {
				continue
			}

			update := PriceUpdate{
				Symbol:    symbol,
				Price:     price,
				Timestamp: time.UnixMilli(msg.EventTime).UTC(),
			}

			select {
			case updates <- update:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}
