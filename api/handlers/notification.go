package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/api"
	"github.com/linesmerrill/casetrack-api/models"
	"github.com/linesmerrill/casetrack-api/notify"
)

// UnreadCountHeader carries the caller's unread notification count
const UnreadCountHeader = "X-Unread-Count"

const writeWait = 10 * time.Second

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sendBuffer is how many pushed messages a socket may have queued before
// the hub drops it
const sendBuffer = 16

// wsClient is one open socket. Only the connection's writer loop writes to
// conn; everyone else queues on send.
type wsClient struct {
	conn *websocket.Conn
	send chan interface{}
	once sync.Once
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn, send: make(chan interface{}, sendBuffer)}
}

func (c *wsClient) write(v interface{}) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// enqueue hands v to the writer loop without blocking. It reports false
// when the queue is full.
func (c *wsClient) enqueue(v interface{}) bool {
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.once.Do(func() { c.conn.Close() })
}

// NotificationHub tracks the notification sockets of connected users
type NotificationHub struct {
	clients map[string]map[*wsClient]struct{}
	mutex   sync.Mutex
}

// NewNotificationHub creates an empty hub
func NewNotificationHub() *NotificationHub {
	return &NotificationHub{clients: make(map[string]map[*wsClient]struct{})}
}

func (h *NotificationHub) register(userID string, c *wsClient) func() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*wsClient]struct{})
	}
	h.clients[userID][c] = struct{}{}
	zap.S().Debugf("user %s connected to /ws/notifications", userID)

	return func() { h.remove(userID, c) }
}

func (h *NotificationHub) remove(userID string, c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[userID][c]; !ok {
		return
	}
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	zap.S().Debugf("user %s disconnected from /ws/notifications", userID)
}

// Connected returns how many sockets userID has open
func (h *NotificationHub) Connected(userID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients[userID])
}

// Push queues a notification on every socket userID has open. It never
// waits on the network; a socket whose queue is full is dropped.
func (h *NotificationHub) Push(userID string, n models.Notification) {
	h.mutex.Lock()
	targets := make([]*wsClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mutex.Unlock()

	msg := map[string]interface{}{
		"event": "new_notification",
		"data":  n,
	}
	for _, c := range targets {
		if !c.enqueue(msg) {
			zap.S().Warnw("notification socket is not keeping up, closing it", "userId", userID)
			h.remove(userID, c)
			c.close()
		}
	}
}

// Notification exposes the caller's notifications
type Notification struct {
	Dispatcher *notify.Dispatcher
	Hub        *NotificationHub
	Changes    Subscriber
}

// NotificationsHandler lists the caller's notifications, newest first
func (n Notification) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := api.PrincipalFrom(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	list, err := n.Dispatcher.ListForUser(ctx, p.ID)
	if err != nil {
		errorResponse("failed to list notifications", w, err)
		return
	}
	unread, err := n.Dispatcher.UnreadCount(ctx, p.ID)
	if err != nil {
		errorResponse("failed to count notifications", w, err)
		return
	}
	w.Header().Set(UnreadCountHeader, strconv.FormatInt(unread, 10))
	writeJSON(w, http.StatusOK, list)
}

// MarkNotificationAsReadHandler clears the unread flag of one of the caller's notifications
func (n Notification) MarkNotificationAsReadHandler(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["notification_id"]
	p, _ := api.PrincipalFrom(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := n.Dispatcher.MarkReadFor(ctx, p.ID, notificationID); err != nil {
		errorResponse("failed to mark notification as read", w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

// NotificationsWebSocketHandler pushes the caller's new notifications, and a
// notifications_changed event whenever any notification is stored or read.
func (n Notification) NotificationsWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := api.PrincipalFrom(r.Context())
	serveFeed(w, r, n.Changes, "notifications_changed", func(c *wsClient) func() {
		return n.Hub.register(p.ID, c)
	})
}
