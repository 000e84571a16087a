package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const priceStreamInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handlePriceStream pushes a market snapshot to the client every few
// seconds until the connection closes.
func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(priceStreamInterval)
	defer ticker.Stop()

	for {
		records, stale := s.market.TopMarkets(r.Context(), defaultMarketLimit)
		payload := cachedResponse{Data: records, Stale: stale}
		if err := conn.WriteJSON(payload); err != nil {
			s.logger.Debug("Price stream closed", zap.Error(err))
			return
		}

		select {
		case <-ticker.C:
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
