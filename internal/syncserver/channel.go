// Package syncserver is the in-memory document-sync emulator used for local
// development and for integration-testing the projection transport. Each
// session document lives in its own channel actor; every write produces a
// versioned full-snapshot broadcast to all subscribed clients.
package syncserver

import (
	"context"
	"encoding/json"
)

type Msg interface{ isChannelMsg() }

// Put replaces the document. Partial documents are allowed; clients fill
// defaults on their side.
type Put struct {
	Doc json.RawMessage
}

func (Put) isChannelMsg() {}

// Delete removes the document. Subscribers observe an exists=false snapshot.
type Delete struct{}

func (Delete) isChannelMsg() {}

// Join registers a subscriber and immediately sends it the current snapshot,
// whether or not the document exists yet.
type Join struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Join) isChannelMsg() {}

type Leave struct{ ClientID string }

func (Leave) isChannelMsg() {}

type Shutdown struct{}

func (Shutdown) isChannelMsg() {}

// GetState is test-only: reflect internal state without data races.
type GetState struct {
	Reply chan View
}

func (GetState) isChannelMsg() {}

// Snapshot is one full-document notification.
type Snapshot struct {
	Version int
	Exists  bool
	Doc     json.RawMessage
}

type View struct {
	Version    int
	NumClients int
	Exists     bool
}

// Channel owns one session document and its subscribers.
type Channel struct {
	inbox   chan Msg
	doc     json.RawMessage
	exists  bool
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewChannel(parent context.Context) *Channel {
	ctx, cancel := context.WithCancel(parent)

	c := &Channel{
		inbox:   make(chan Msg, 64), // Small buffer
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.loop()
	return c
}

// Inbox exposes the channel's message queue to the transport layer and tests.
func (c *Channel) Inbox() chan<- Msg { return c.inbox }

func (c *Channel) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately, so a
				// subscriber to a missing document learns that right away.
				c.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- c.snapshot()

			case Leave:
				delete(c.clients, msg.ClientID)

			case Put:
				c.doc = msg.Doc
				c.exists = true
				c.version++
				c.broadcast(c.snapshot())

			case Delete:
				c.doc = nil
				c.exists = false
				c.version++
				c.broadcast(c.snapshot())

			case GetState:
				msg.Reply <- View{
					Version:    c.version,
					NumClients: len(c.clients),
					Exists:     c.exists,
				}

			case Shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *Channel) snapshot() Snapshot {
	return Snapshot{Version: c.version, Exists: c.exists, Doc: c.doc}
}

func (c *Channel) shutdown() {
	for id, ch := range c.clients {
		close(ch) // Tell client no more snapshots
		delete(c.clients, id)
	}
	c.cancel()
}

func (c *Channel) broadcast(snap Snapshot) {
	for id, ch := range c.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(c.clients, id)
		}
	}
}
