// Package kds fans order events out to kitchen display websocket clients.
package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
)

const (
	EventOrderCreated = "order_created"
	EventOrderStatus  = "order_status"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Conn is the subset of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub holds the connected kitchen displays.
type Hub struct {
	clients map[Conn]string // conn -> station name
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]string)}
}

func (h *Hub) Register(conn Conn, station string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = station
	utils.InfoLogger.Printf("Kitchen display %q connected (%d total)", station, len(h.clients))
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mutex.Unlock()

	if ok {
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// OrderCreated announces a freshly placed order.
func (h *Hub) OrderCreated(order models.Order) {
	h.Broadcast(Message{Event: EventOrderCreated, Data: order})
}

// OrderStatusChanged announces a kitchen status transition.
func (h *Hub) OrderStatusChanged(orderID string, status models.OrderStatus) {
	h.Broadcast(Message{
		Event: EventOrderStatus,
		Data: map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		},
	})
}

// Broadcast writes msg to every client and drops the ones that fail.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling kitchen message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, station := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to kitchen display %q: %v", msg.Event, station, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
