package kds

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/campus-canteen/models"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestBroadcastStatusChange(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, "grill")

	hub.OrderStatusChanged("order-1", models.StatusPreparing)

	require.Len(t, conn.messages, 1)
	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(conn.messages[0], &msg))
	assert.Equal(t, EventOrderStatus, msg.Event)
	assert.Equal(t, "Preparing", msg.Data["status"])
}

func TestBroadcastDropsFailingClient(t *testing.T) {
	hub := NewHub()
	good := &fakeConn{}
	bad := &fakeConn{fail: true}
	hub.Register(good, "counter")
	hub.Register(bad, "tandoor")

	hub.OrderCreated(models.Order{ID: "order-2"})

	assert.Equal(t, 1, hub.ClientCount())
	assert.True(t, bad.closed)
	assert.Len(t, good.messages, 1)
}

func TestUnregister(t *testing.T) {
	hub := NewHub()
	conn := &fakeConn{}
	hub.Register(conn, "counter")
	hub.Unregister(conn)

	assert.Equal(t, 0, hub.ClientCount())
	assert.True(t, conn.closed)
}
