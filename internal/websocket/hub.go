package websocket

import (
	"encoding/json"
	"log"

	"social-go/internal/feedtypes"
)

// Hub maintains the set of connected notification listeners and routes
// notification events to the right recipient's connection.
type Hub struct {
	// Registered clients, mapping UserID to Client. One connection per
	// user; a new connection replaces the old one.
	clients map[uint]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Notification events waiting for delivery.
	deliver chan *feedtypes.NotificationEvent
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *feedtypes.NotificationEvent, 256),
	}
}

// DeliverNotification hands an event to the hub for delivery to its
// recipient, if that user currently holds a connection. The send is
// non-blocking so the Kafka consumer never stalls behind a slow socket.
func (h *Hub) DeliverNotification(event *feedtypes.NotificationEvent) {
	select {
	case h.deliver <- event:
	default:
		log.Printf("警告: Hub deliver channel is full. Dropping event for recipient %d", event.RecipientID)
	}
}

// Run starts the hub and listens for messages on its channels.
func (h *Hub) Run() {
	log.Println("WebSocket Hub Run loop started.")
	for {
		select {
		case client := <-h.register:
			if existingClient, ok := h.clients[client.UserID]; ok {
				log.Printf("警告: 用户 %d 已有连接，关闭旧连接并注册新连接。", client.UserID)
				close(existingClient.send)
			}
			h.clients[client.UserID] = client
			log.Printf("客户端已注册: UserID %d", client.UserID)

		case client := <-h.unregister:
			// Only drop the stored client when it is the one unregistering;
			// an old connection replaced by a new one must not evict it.
			if storedClient, ok := h.clients[client.UserID]; ok && storedClient == client {
				delete(h.clients, client.UserID)
				close(client.send)
				log.Printf("客户端已注销: UserID %d", client.UserID)
			}

		case event := <-h.deliver:
			client, ok := h.clients[event.RecipientID]
			if !ok {
				// Recipient is not connected; they will see the record when
				// they poll. The database copy is the source of truth.
				continue
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("序列化通知事件失败 (notification %d): %v", event.NotificationID, err)
				continue
			}
			select {
			case client.send <- payload:
			default:
				// The client's send buffer is full; treat it as dead.
				log.Printf("客户端 %d 发送缓冲已满，断开连接。", client.UserID)
				delete(h.clients, client.UserID)
				close(client.send)
			}
		}
	}
}
