package http

import (
	"net/http"
	"time"

	"lastmile/internal/adapters/out/eventbus"
	"lastmile/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = 20 * time.Second
	liveBuffer     = 64
)

// EventFeed is the source of committed domain events streamed to clients.
type EventFeed interface {
	Subscribe(buffer int) (<-chan eventbus.Envelope, func())
}

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// LiveEvents streams every committed domain event to the client as JSON.
// Messages from the client are ignored apart from close and pong frames.
func (s *Server) LiveEvents(ctx echo.Context) error {
	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		s.logger.WarnContext(ctx.Request().Context(), "websocket upgrade failed", "error", err)
		return nil
	}
	defer func() { _ = conn.Close() }()

	events, unsubscribe := s.feed.Subscribe(liveBuffer)
	defer unsubscribe()

	metrics.LiveFeedClients.Inc()
	defer metrics.LiveFeedClients.Dec()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(1 << 12)
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(livePongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	reqCtx := ctx.Request().Context()
	for {
		select {
		case <-done:
			return nil
		case <-reqCtx.Done():
			return nil
		case env, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(liveWriteWait))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(env); err != nil {
				s.logger.DebugContext(reqCtx, "live feed write failed", "error", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return nil
			}
		}
	}
}
