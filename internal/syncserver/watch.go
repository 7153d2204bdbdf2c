package syncserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/questforge/tabletop-client/pkg/wire"
)

// Watch upgrades the connection and streams full-document snapshots for one
// game until the client goes away. Subscribing to a document that does not
// exist yet is fine; the watcher gets an exists=false snapshot immediately
// and a real one on the first write.
func Watch(h *Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("game")
		if gameID == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}

		ch := h.Ensure(gameID)

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan Snapshot, 8)
		clientID := randID(6)

		ch.Inbox() <- Join{ClientID: clientID, Outbox: out}
		defer func() { ch.Inbox() <- Leave{ClientID: clientID} }()

		log.Debug("watcher joined", zap.String("game_id", gameID), zap.String("client_id", clientID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := wire.ServerMessage{
					Type:    wire.TypeSnapshot,
					Version: snap.Version,
					Exists:  snap.Exists,
					Doc:     snap.Doc,
				}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop: the sync stream is one-way, so reads exist only to
		// notice the client closing.
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}
