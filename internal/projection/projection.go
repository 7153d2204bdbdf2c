// Package projection mirrors the authoritative remote session record into the
// local store. It owns exactly one subscription per bound game identifier and
// republishes every remote change as an atomic full-snapshot replace.
//
// Failures are surfaced as store error state, never as panics or uncaught
// errors across the UI boundary, and no retries happen here: reconnection is
// the transport's responsibility.
package projection

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/questforge/tabletop-client/internal/session"
	"github.com/questforge/tabletop-client/internal/store"
)

// User-visible binding errors.
const (
	ErrMsgNoGameID       = "no game identifier supplied"
	ErrMsgNotFound       = "session not found"
	ErrMsgWatchFailed    = "failed to watch session"
	ErrMsgDecodeSnapshot = "failed to read session snapshot"
)

// Event is one push notification from the remote document store: either a
// full snapshot (Exists reports whether the record is present) or a transport
// failure.
type Event struct {
	Exists bool
	Doc    json.RawMessage
	Err    error
}

// Subscription is the teardown token returned at subscribe time. After
// Unsubscribe returns, the handler is never invoked again.
type Subscription interface {
	Unsubscribe()
}

// Source is the remote document-sync boundary: push-based, full-document
// snapshots, at-most-eventually-consistent delivery.
type Source interface {
	Subscribe(ctx context.Context, gameID string, handler func(Event)) (Subscription, error)
}

// Projection binds game identifiers to the store. At most one binding is
// active at a time; binding a new identifier releases the previous one.
type Projection struct {
	store  *store.Store
	source Source
	log    *zap.Logger

	mu      sync.Mutex
	current *Binding
}

func New(st *store.Store, src Source, log *zap.Logger) *Projection {
	if log == nil {
		log = zap.NewNop()
	}
	return &Projection{store: st, source: src, log: log}
}

// Bind subscribes to gameID and mirrors its snapshots until Unbind.
//
// An empty identifier records a binding error in the store and returns an
// inert binding, so callers can unconditionally defer Unbind on every exit
// path. Any previously active binding is released first.
func (p *Projection) Bind(ctx context.Context, gameID string) *Binding {
	p.mu.Lock()
	prev := p.current
	p.current = nil
	p.mu.Unlock()
	if prev != nil {
		prev.Unbind()
	}

	if gameID == "" {
		p.store.SetError(ErrMsgNoGameID)
		return &Binding{}
	}

	b := &Binding{store: p.store, log: p.log.With(zap.String("game_id", gameID)), gameID: gameID}

	p.store.SetLoading(true)
	sub, err := p.source.Subscribe(ctx, gameID, b.handle)
	if err != nil {
		p.log.Warn("session subscribe failed", zap.String("game_id", gameID), zap.Error(err))
		p.store.SetError(ErrMsgWatchFailed + ": " + err.Error())
		p.store.SetLoading(false)
		return &Binding{}
	}
	b.mu.Lock()
	b.sub = sub
	b.mu.Unlock()

	p.mu.Lock()
	p.current = b
	p.mu.Unlock()
	return b
}

// Unbind releases whatever binding is active.
func (p *Projection) Unbind() {
	p.mu.Lock()
	b := p.current
	p.current = nil
	p.mu.Unlock()
	if b != nil {
		b.Unbind()
	}
}

// Binding is the resource handle for one active subscription. The zero value
// is inert: Unbind is a no-op and no events are ever delivered.
type Binding struct {
	store  *store.Store
	log    *zap.Logger
	gameID string

	mu     sync.Mutex
	sub    Subscription
	closed bool
}

// Unbind cancels the subscription. Idempotent. Events that race with Unbind
// are dropped: the liveness check and event handling share b.mu, so no
// snapshot can mutate the store after Unbind returns.
func (b *Binding) Unbind() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	sub := b.sub
	b.sub = nil
	b.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (b *Binding) handle(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	switch {
	case ev.Err != nil:
		b.log.Warn("session watch error", zap.Error(ev.Err))
		b.store.SetError(ErrMsgWatchFailed + ": " + ev.Err.Error())
		b.store.SetLoading(false)

	case !ev.Exists:
		b.store.ClearSession()
		b.store.SetError(ErrMsgNotFound)
		b.store.SetLoading(false)

	default:
		sess, err := session.FromSnapshot(b.gameID, ev.Doc)
		if err != nil {
			b.log.Warn("bad session snapshot", zap.Error(err))
			b.store.SetError(ErrMsgDecodeSnapshot)
			b.store.SetLoading(false)
			return
		}
		b.store.ApplySnapshot(sess)
	}
}
