package websocket

import (
	"log"
	"net/http"
	"time"

	"social-go/internal/config"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the HTTP layer; the notifier accepts any origin
	// that presented a valid token.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a middleman between one websocket connection and the hub.
// The notification stream is push-only: inbound frames from the peer are
// read solely to service pings and to detect a closed connection.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound payloads.
	send chan []byte

	// Authenticated User ID for this client.
	UserID uint
}

// ServeClient upgrades the HTTP request to a websocket connection,
// registers the client with the hub and starts its pumps. userID must
// already be authenticated by the caller.
func ServeClient(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, wsCfg config.WebSocketConfig) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket 升级失败 (user %d): %v", userID, err)
		return
	}

	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		UserID: userID,
	}
	hub.register <- client

	go client.writePump(wsCfg)
	go client.readPump(wsCfg)
}

// readPump drains inbound frames so pong handling works, and unregisters
// the client when the connection dies.
func (c *Client) readPump(wsCfg config.WebSocketConfig) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(int64(wsCfg.MaxMessageSizeBytes))
	c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket 错误 (客户端: %d): %v", c.UserID, err)
			}
			break
		}
		// Inbound payloads are ignored on this stream.
	}
}

// writePump pumps payloads from the hub to the websocket connection and
// keeps the connection alive with periodic pings.
func (c *Client) writePump(wsCfg config.WebSocketConfig) {
	pingPeriod := time.Duration(wsCfg.PingPeriodSeconds) * time.Second
	writeWait := time.Duration(wsCfg.WriteWaitSeconds) * time.Second

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("WebSocket 写入失败 (客户端: %d): %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
