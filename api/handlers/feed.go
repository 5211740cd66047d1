package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// Subscriber is the subscription side of a change feed
type Subscriber interface {
	Subscribe(fn func()) (unsubscribe func())
}

// CaseFeed bridges the case change feed to WebSocket clients
type CaseFeed struct {
	Changes Subscriber
}

// CasesWebSocketHandler sends a cases_changed event after every case change
func (f CaseFeed) CasesWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	serveFeed(w, r, f.Changes, "cases_changed", nil)
}

// serveFeed upgrades the request and forwards change signals as event
// messages until the client goes away. The feed callback only signals a
// buffered channel and the hub only queues on client.send; the loop below
// owns every write.
func serveFeed(w http.ResponseWriter, r *http.Request, changes Subscriber, event string, register func(c *wsClient) func()) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "path", r.URL.Path, "error", err)
		return
	}
	client := newWSClient(conn)
	defer client.close()

	if register != nil {
		unregister := register(client)
		defer unregister()
	}

	signal := make(chan struct{}, 1)
	unsubscribe := changes.Subscribe(func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg := <-client.send:
			if err := client.write(msg); err != nil {
				zap.S().Debugw("websocket write failed", "path", r.URL.Path, "error", err)
				return
			}
		case <-signal:
			if err := client.write(map[string]string{"event": event}); err != nil {
				zap.S().Debugw("websocket write failed", "path", r.URL.Path, "error", err)
				return
			}
		}
	}
}
