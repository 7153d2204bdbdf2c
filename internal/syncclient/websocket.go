// Package syncclient implements the projection's Source over the websocket
// sync transport.
package syncclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/questforge/tabletop-client/internal/projection"
	"github.com/questforge/tabletop-client/pkg/wire"
)

// WebSocketSource subscribes to session documents over the sync service's
// websocket endpoint. One connection per subscription.
type WebSocketSource struct {
	baseURL string
	log     *zap.Logger
}

// New builds a source for a sync service base URL (ws:// or wss://).
func New(baseURL string, log *zap.Logger) *WebSocketSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocketSource{baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

var _ projection.Source = (*WebSocketSource)(nil)

// Subscribe dials the sync service and pumps snapshot frames into handler
// until Unsubscribe or a transport failure. A transport failure is delivered
// once as an Event with Err set; the source does not reconnect.
func (s *WebSocketSource) Subscribe(ctx context.Context, gameID string, handler func(projection.Event)) (projection.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	endpoint := s.baseURL + "/ws?game=" + url.QueryEscape(gameID)
	conn, _, err := websocket.Dial(subCtx, endpoint, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dial sync service: %w", err)
	}

	sub := &subscription{cancel: cancel, conn: conn}
	go s.pump(subCtx, conn, gameID, handler)
	return sub, nil
}

func (s *WebSocketSource) pump(ctx context.Context, conn *websocket.Conn, gameID string, handler func(projection.Event)) {
	for {
		var msg wire.ServerMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil {
				// Unsubscribed; not a transport failure.
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			handler(projection.Event{Err: err})
			return
		}

		switch msg.Type {
		case wire.TypeSnapshot:
			handler(projection.Event{Exists: msg.Exists, Doc: msg.Doc})
		case wire.TypeError:
			handler(projection.Event{Err: errors.New(msg.Error)})
		default:
			s.log.Debug("unknown sync frame", zap.String("game_id", gameID), zap.String("type", msg.Type))
		}
	}
}

type subscription struct {
	cancel context.CancelFunc
	conn   *websocket.Conn
	once   sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		_ = s.conn.Close(websocket.StatusNormalClosure, "unsubscribed")
	})
}
