// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
)

const (
	// writeWait is the time allowed to write one message to the peer.
	writeWait = 10 * time.Second
	// pongWait is the time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize caps inbound frames; viewers only send control frames.
	maxMessageSize = 512
	// subscriberBuffer is the number of drafts queued per viewer before drops.
	subscriberBuffer = 16
)

// PreviewPublisher fans draft configurations out to live viewers.
type PreviewPublisher interface {
	Publish(sessionID string, cfg Configuration)
	CloseSession(sessionID string)
}

// PreviewSubscription receives drafts for one session until it is closed.
type PreviewSubscription struct {
	// Updates is closed when the session ends or Close is called.
	Updates <-chan Configuration

	updates chan Configuration
	hub     *PreviewHub
	session string
	once    sync.Once
}

// Close detaches the subscription from the hub.
func (subscription *PreviewSubscription) Close() {
	subscription.hub.remove(subscription)
}

// PreviewHub is the in-process preview renderer integration: it holds live
// viewers per session and pushes every draft to them without blocking.
type PreviewHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*PreviewSubscription]struct{}
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewPreviewHub creates an empty hub. checkOrigin may be nil to accept any origin.
func NewPreviewHub(checkOrigin func(*http.Request) bool, logger *slog.Logger) *PreviewHub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &PreviewHub{
		subscribers: make(map[string]map[*PreviewSubscription]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// Subscribe registers a viewer for sessionID.
func (hub *PreviewHub) Subscribe(sessionID string) *PreviewSubscription {
	updates := make(chan Configuration, subscriberBuffer)
	subscription := &PreviewSubscription{Updates: updates, updates: updates, hub: hub, session: sessionID}

	hub.mu.Lock()
	defer hub.mu.Unlock()

	if hub.subscribers[sessionID] == nil {
		hub.subscribers[sessionID] = make(map[*PreviewSubscription]struct{})
	}
	hub.subscribers[sessionID][subscription] = struct{}{}
	return subscription
}

// Publish queues cfg for every viewer of sessionID. Slow viewers drop frames.
func (hub *PreviewHub) Publish(sessionID string, cfg Configuration) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for subscription := range hub.subscribers[sessionID] {
		select {
		case subscription.updates <- cfg:
		default:
			hub.logger.Warn("avatar_preview_frame_dropped", slog.String("session_id", sessionID))
		}
	}
}

// CloseSession disconnects every viewer of sessionID.
func (hub *PreviewHub) CloseSession(sessionID string) {
	hub.mu.Lock()
	subscriptions := hub.subscribers[sessionID]
	delete(hub.subscribers, sessionID)
	hub.mu.Unlock()

	for subscription := range subscriptions {
		subscription.once.Do(func() { close(subscription.updates) })
	}
}

// Viewers reports how many viewers watch sessionID.
func (hub *PreviewHub) Viewers(sessionID string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscribers[sessionID])
}

func (hub *PreviewHub) remove(subscription *PreviewSubscription) {
	hub.mu.Lock()
	if set, ok := hub.subscribers[subscription.session]; ok {
		delete(set, subscription)
		if len(set) == 0 {
			delete(hub.subscribers, subscription.session)
		}
	}
	hub.mu.Unlock()

	subscription.once.Do(func() { close(subscription.updates) })
}

/*
ServeWS upgrades the request and streams the drafts of subscription, starting
with current. The subscription is closed when the viewer goes away, including
when the upgrade fails.
*/
func (hub *PreviewHub) ServeWS(writer http.ResponseWriter, request *http.Request, subscription *PreviewSubscription, current Configuration) {
	logger := ctxutil.GetLogger(request.Context())

	conn, err := hub.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		subscription.Close()
		// The upgrader already replied to the client.
		logger.Warn("avatar_preview_upgrade_failed", slog.Any("error", err))
		return
	}

	logger.Info("avatar_preview_connected", slog.Int("viewers", hub.Viewers(subscription.session)))

	go hub.writePump(conn, subscription, current, logger)
	go hub.readPump(conn, subscription)
}

// writePump is the only writer on conn.
func (hub *PreviewHub) writePump(conn *websocket.Conn, subscription *PreviewSubscription, current Configuration, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		subscription.Close()
		_ = conn.Close()
		logger.Info("avatar_preview_disconnected")
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(current); err != nil {
		return
	}

	for {
		select {
		case cfg, ok := <-subscription.Updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(cfg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains control frames and detects disconnects.
func (hub *PreviewHub) readPump(conn *websocket.Conn, subscription *PreviewSubscription) {
	defer subscription.Close()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
