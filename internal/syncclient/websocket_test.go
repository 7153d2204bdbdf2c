package syncclient_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/questforge/tabletop-client/internal/projection"
	"github.com/questforge/tabletop-client/internal/store"
	"github.com/questforge/tabletop-client/internal/syncclient"
	"github.com/questforge/tabletop-client/internal/syncserver"
)

type fixture struct {
	srv   *httptest.Server
	hub   *syncserver.Hub
	store *store.Store
	proj  *projection.Projection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hub := syncserver.NewHub(context.Background())
	srv := httptest.NewServer(syncserver.SetupRoutes(hub, zap.NewNop()))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { hub.Inbox() <- syncserver.ShutdownHub{} })

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	st := store.New()
	src := syncclient.New(wsURL, zap.NewNop())
	return &fixture{
		srv:   srv,
		hub:   hub,
		store: st,
		proj:  projection.New(st, src, zap.NewNop()),
	}
}

func (f *fixture) put(t *testing.T, gameID, doc string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, f.srv.URL+"/games/"+gameID, bytes.NewReader([]byte(doc)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func (f *fixture) del(t *testing.T, gameID string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, f.srv.URL+"/games/"+gameID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestProjection_MirrorsRemoteWrites(t *testing.T) {
	f := newFixture(t)
	f.put(t, "game-1", `{"roomId":"123456","hostId":"u1","gameStatus":"lobby"}`)

	b := f.proj.Bind(context.Background(), "game-1")
	defer b.Unbind()

	require.Eventually(t, func() bool {
		return f.store.State().Session.RoomID == "123456"
	}, 2*time.Second, 10*time.Millisecond)

	f.put(t, "game-1", `{"roomId":"123456","hostId":"u1","gameStatus":"voting","currentTurn":2}`)

	require.Eventually(t, func() bool {
		s := f.store.State().Session
		return s.Status == "voting" && s.CurrentTurn == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProjection_MissingDocumentReportsNotFound(t *testing.T) {
	f := newFixture(t)

	b := f.proj.Bind(context.Background(), "never-written")
	defer b.Unbind()

	require.Eventually(t, func() bool {
		return f.store.State().Err == projection.ErrMsgNotFound
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, f.store.State().Loading)
}

func TestProjection_DeleteResetsSession(t *testing.T) {
	f := newFixture(t)
	f.put(t, "game-2", `{"roomId":"222222","gameStatus":"lobby"}`)

	b := f.proj.Bind(context.Background(), "game-2")
	defer b.Unbind()

	require.Eventually(t, func() bool {
		return f.store.State().Session.RoomID == "222222"
	}, 2*time.Second, 10*time.Millisecond)

	f.del(t, "game-2")

	require.Eventually(t, func() bool {
		st := f.store.State()
		return st.Err == projection.ErrMsgNotFound && !st.Bound()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestProjection_UnbindStopsMirroring(t *testing.T) {
	f := newFixture(t)
	f.put(t, "game-3", `{"roomId":"333333","gameStatus":"lobby"}`)

	b := f.proj.Bind(context.Background(), "game-3")
	require.Eventually(t, func() bool {
		return f.store.State().Session.RoomID == "333333"
	}, 2*time.Second, 10*time.Millisecond)

	b.Unbind()
	f.put(t, "game-3", `{"roomId":"999999","gameStatus":"lobby"}`)

	// Give any stray frame time to arrive, then confirm nothing changed.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "333333", f.store.State().Session.RoomID)
}

func TestCreateGameEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.srv.URL+"/games", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}
