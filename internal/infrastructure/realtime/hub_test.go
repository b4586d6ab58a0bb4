package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConnection upgrades a real websocket pair and wraps the server side
// in a Connection, returning the client side for observing deliveries.
func newTestConnection(t *testing.T, userID string) (*Connection, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case ws := <-serverSide:
		return NewConnection(userID, ws), client
	case <-time.After(2 * time.Second):
		t.Fatal("server side of websocket never arrived")
		return nil, nil
	}
}

func readFrame(t *testing.T, client *websocket.Conn) string {
	t.Helper()
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestHub_BroadcastReachesRoomMembersIncludingSender(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	connA, clientA := newTestConnection(t, "alice")
	connB, clientB := newTestConnection(t, "bob")
	hub.Attach(connA)
	hub.Attach(connB)
	hub.Join("conv-1", connA)
	hub.Join("conv-1", connB)

	delivered := hub.Broadcast("conv-1", []byte(`{"hello":"room"}`))
	assert.Equal(t, 2, delivered)
	assert.Equal(t, `{"hello":"room"}`, readFrame(t, clientA))
	assert.Equal(t, `{"hello":"room"}`, readFrame(t, clientB))
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	connA, _ := newTestConnection(t, "alice")
	connB, clientB := newTestConnection(t, "bob")
	hub.Attach(connA)
	hub.Attach(connB)
	hub.Join("conv-1", connA)
	hub.Join("conv-1", connB)

	hub.Leave("conv-1", connA)
	assert.False(t, hub.InRoom("conv-1", connA.ID))

	delivered := hub.Broadcast("conv-1", []byte(`after-leave`))
	assert.Equal(t, 1, delivered)
	assert.Equal(t, "after-leave", readFrame(t, clientB))
}

func TestHub_DetachClearsRoomsAndReportsOffline(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	conn, _ := newTestConnection(t, "alice")
	hub.Attach(conn)
	hub.Join("conv-1", conn)
	hub.Join("conv-2", conn)

	wentOffline := hub.Detach(conn)
	assert.True(t, wentOffline)
	assert.False(t, hub.IsOnline("alice"))
	assert.Equal(t, 0, hub.RoomSize("conv-1"))
	assert.Equal(t, 0, hub.RoomSize("conv-2"))
	assert.Equal(t, 0, hub.Broadcast("conv-1", []byte("nobody home")))
}

func TestHub_AttachReplacesPreviousSession(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	first, firstClient := newTestConnection(t, "alice")
	second, secondClient := newTestConnection(t, "alice")

	assert.False(t, hub.Attach(first))
	hub.Join("conv-1", first)

	replaced := hub.Attach(second)
	assert.True(t, replaced)
	assert.True(t, hub.IsOnline("alice"))
	assert.False(t, hub.InRoom("conv-1", first.ID), "replaced session leaves its rooms")

	// The replaced client observes the close; the new one keeps working.
	require.NoError(t, firstClient.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := firstClient.ReadMessage()
	assert.Error(t, err)

	hub.Join("conv-1", second)
	assert.Equal(t, 1, hub.Broadcast("conv-1", []byte("still here")))
	assert.Equal(t, "still here", readFrame(t, secondClient))

	// The old session's deferred detach must not mark the user offline.
	assert.False(t, hub.Detach(first))
	assert.True(t, hub.IsOnline("alice"))
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	connA, clientA := newTestConnection(t, "alice")
	connB, clientB := newTestConnection(t, "bob")
	hub.Attach(connA)
	hub.Attach(connB)
	// No room membership needed; presence goes to every live session.

	delivered := hub.BroadcastAll([]byte("presence"))
	assert.Equal(t, 2, delivered)
	assert.Equal(t, "presence", readFrame(t, clientA))
	assert.Equal(t, "presence", readFrame(t, clientB))
}

func TestConnection_ConcurrentSendAndClose(t *testing.T) {
	// A member's broadcast can race a disconnecting peer's deferred Close.
	// Neither side may panic; Send must degrade to ErrConnectionClosed.
	for i := 0; i < 100; i++ {
		conn, _ := newTestConnection(t, "alice")
		conn.Start()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 200; j++ {
				if conn.Send([]byte("payload")) != nil {
					return
				}
			}
		}()

		conn.Close(websocket.CloseNormalClosure, "bye")
		<-done
		assert.ErrorIs(t, conn.Send([]byte("late")), ErrConnectionClosed)
	}
}

func TestConnection_SendAfterClose(t *testing.T) {
	conn, _ := newTestConnection(t, "alice")
	conn.Start()
	conn.Close(websocket.CloseNormalClosure, "bye")

	err := conn.Send([]byte("too late"))
	assert.ErrorIs(t, err, ErrConnectionClosed)
}
