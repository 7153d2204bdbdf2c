package syncserver

import (
	"context"
)

type HubMsg interface{ isHubMsg() }

type EnsureChannel struct {
	GameID string
	Reply  chan *Channel
}

type GetChannel struct {
	GameID string
	Reply  chan *Channel
}

type RemoveChannel struct {
	GameID string
}

type ShutdownHub struct{}

func (EnsureChannel) isHubMsg() {}
func (GetChannel) isHubMsg()    {}
func (RemoveChannel) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Hub owns the set of live document channels, keyed by game identifier.
type Hub struct {
	inbox    chan HubMsg
	channels map[string]*Channel
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		channels: make(map[string]*Channel),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Ensure returns the channel for gameID, creating it if needed.
func (h *Hub) Ensure(gameID string) *Channel {
	reply := make(chan *Channel, 1)
	h.inbox <- EnsureChannel{GameID: gameID, Reply: reply}
	return <-reply
}

// Get returns the channel for gameID, or nil.
func (h *Hub) Get(gameID string) *Channel {
	reply := make(chan *Channel, 1)
	h.inbox <- GetChannel{GameID: gameID, Reply: reply}
	return <-reply
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureChannel:
				if ch := h.channels[msg.GameID]; ch != nil {
					msg.Reply <- ch
					break
				}
				ch := NewChannel(h.ctx)
				h.channels[msg.GameID] = ch
				msg.Reply <- ch

			case GetChannel:
				msg.Reply <- h.channels[msg.GameID] // May be nil

			case RemoveChannel:
				delete(h.channels, msg.GameID)

			case ShutdownHub:
				for _, ch := range h.channels {
					ch.Inbox() <- Shutdown{}
				}
				clear(h.channels)
				h.cancel()
			}
		}
	}
}
