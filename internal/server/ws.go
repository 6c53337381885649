package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/panel"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// PanelSource is what the panel websocket needs from the application.
type PanelSource interface {
	Subscribe() (<-chan panel.Snapshot, func())
	SetContainer(width, height int)
}

// clientMessage is sent by browsers, e.g. when the video element resizes.
type clientMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PanelHandler pushes panel snapshots to websocket clients.
type PanelHandler struct {
	source PanelSource
	log    *slog.Logger
}

// NewPanelHandler creates a new PanelHandler.
func NewPanelHandler(source PanelSource, log *slog.Logger) *PanelHandler {
	return &PanelHandler{source: source, log: log}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PanelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := h.source.Subscribe()
	defer cancel()

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case s, ok := <-snapshots:
				if !ok {
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
						time.Now().Add(writeWait))
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(s); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debug("ignoring malformed panel message", "error", err)
			continue
		}
		if msg.Type == "resize" {
			h.source.SetContainer(msg.Width, msg.Height)
		}
	}

	close(stop)
	<-done
}
