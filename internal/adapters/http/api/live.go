// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/urchin/pkg/logger"
)

// Websocket timing constants.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// LiveDependencies defines the interface for live frame streaming.
type LiveDependencies interface {
	Subscribe() (int, <-chan []byte)
	Unsubscribe(id int)
	Control(ctx context.Context, cmd Command) bool
}

// LiveHandler streams rendered frames over a websocket. Each text message
// from the server is one SVG-encoded frame; each text message from the
// client is one interaction command.
type LiveHandler struct {
	deps     LiveDependencies
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	return &LiveHandler{
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger.Get().Named("live"),
	}
}

// HandleLive handles GET /live websocket upgrades.
func (h *LiveHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Any("error", err))
		return
	}

	id, frames := h.deps.Subscribe()
	defer h.deps.Unsubscribe(id)
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	go h.readLoop(r.Context(), conn, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readLoop consumes client messages, applying any that parse as commands,
// and signals done when the connection drops.
func (h *LiveHandler) readLoop(ctx context.Context, conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		cmd, err := decodeCommand(payload)
		if err != nil {
			h.logger.Debug(ctx, "ignoring malformed live command", logger.Any("error", err))
			continue
		}
		if !h.deps.Control(ctx, cmd) {
			h.logger.Debug(ctx, "ignoring unknown live command", logger.String("action", cmd.Action))
		}
	}
}
