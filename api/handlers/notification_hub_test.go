package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/casetrack-api/models"
)

// serverConn returns the server side of a live socket that nothing reads from or writes to
func serverConn(t *testing.T) *websocket.Conn {
	t.Helper()
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- c
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case c := <-conns:
		t.Cleanup(func() { c.Close() })
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("server never upgraded the connection")
		return nil
	}
}

func TestNotificationHub_PushQueues(t *testing.T) {
	hub := NewNotificationHub()
	client := newWSClient(serverConn(t))
	unregister := hub.register("victim-1", client)

	hub.Push("victim-1", models.Notification{ID: "n1"})
	hub.Push("someone-else", models.Notification{ID: "n2"})

	require.Len(t, client.send, 1)
	msg := (<-client.send).(map[string]interface{})
	assert.Equal(t, "new_notification", msg["event"])
	assert.Equal(t, "n1", msg["data"].(models.Notification).ID)

	unregister()
	assert.Equal(t, 0, hub.Connected("victim-1"))
}

func TestNotificationHub_PushDropsStalledSocket(t *testing.T) {
	hub := NewNotificationHub()
	client := newWSClient(serverConn(t))
	hub.register("victim-1", client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i <= sendBuffer; i++ {
			hub.Push("victim-1", models.Notification{ID: strconv.Itoa(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push waited on a socket with no writer")
	}
	assert.Len(t, client.send, sendBuffer)
	assert.Equal(t, 0, hub.Connected("victim-1"))
}
