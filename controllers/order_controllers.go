package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/middlewares"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/services"
	"github.com/yeremiapane/campus-canteen/statemachine"
	"github.com/yeremiapane/campus-canteen/utils"
)

type OrderController struct {
	Store        database.Store
	Orders       *services.OrderService
	Upgrader     websocket.Upgrader
	PollInterval time.Duration
}

func NewOrderController(store database.Store, orders *services.OrderService, upgrader websocket.Upgrader, pollInterval time.Duration) *OrderController {
	return &OrderController{
		Store:        store,
		Orders:       orders,
		Upgrader:     upgrader,
		PollInterval: pollInterval,
	}
}

func orderView(order *models.Order) gin.H {
	return gin.H{
		"order":         order,
		"total_display": utils.FormatRupee(order.Total),
		"tracker":       statemachine.Render(order.Status),
	}
}

func snapshotView(s services.StatusSnapshot) gin.H {
	if !s.Found {
		return gin.H{"active": false, "found": false, "order_id": s.OrderID}
	}
	return gin.H{
		"active":   true,
		"found":    true,
		"order_id": s.OrderID,
		"status":   s.Status,
		"tracker":  statemachine.Render(s.Status),
	}
}

// Checkout submits the session cart. Phone defaults to the logged-in number.
func (oc *OrderController) Checkout(c *gin.Context) {
	var input struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	store := middlewares.CartFrom(c)
	snapshot := store.Snapshot()
	if len(snapshot.Lines) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Your cart is empty"))
		return
	}

	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		phone = snapshot.Phone
	}

	if !store.BeginCheckout() {
		utils.RespondError(c, http.StatusConflict, errors.New("Your order is already being placed"))
		return
	}
	defer store.EndCheckout()

	receipt, err := oc.Orders.PlaceOrder(c.Request.Context(), services.CheckoutRequest{
		Name:  input.Name,
		Phone: phone,
		Lines: snapshot.Lines,
	})

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondJSON(c, http.StatusUnprocessableEntity, verr.Message, gin.H{"field": verr.Field})
		return
	case errors.Is(err, services.ErrOrderItemsSave):
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not save order items to the database.")
		return
	case err != nil:
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not create your order in the database.")
		return
	}

	store.RemoveOrdered(snapshot.Lines)
	utils.RespondJSON(c, http.StatusCreated, "Order placed", gin.H{
		"receipt":       receipt,
		"total_display": utils.FormatRupee(receipt.Total),
		"tracker":       statemachine.Render(receipt.Status),
	})
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Store.GetOrder(c.Request.Context(), c.Param("order_id"))
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Order not found"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error loading order %s: %v", c.Param("order_id"), err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not load the order")
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order", orderView(order))
}

func (oc *OrderController) GetOrderStatus(c *gin.Context) {
	fetch := services.OrderStatusFetcher(oc.Store, c.Param("order_id"))
	snapshot, err := fetch(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching status of %s: %v", c.Param("order_id"), err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not load the order status")
		return
	}
	if !snapshot.Found {
		utils.RespondError(c, http.StatusNotFound, errors.New("Order not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order status", snapshotView(snapshot))
}

// GetActiveOrder reports the latest order of the logged-in phone.
func (oc *OrderController) GetActiveOrder(c *gin.Context) {
	fetch := services.LatestOrderFetcher(oc.Store, c.GetString(middlewares.PhoneKey))
	snapshot, err := fetch(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching active order: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not load your order")
		return
	}

	message := "Active order"
	if !snapshot.Found {
		message = "No active order"
	}
	utils.RespondJSON(c, http.StatusOK, message, snapshotView(snapshot))
}

func (oc *OrderController) StreamOrder(c *gin.Context) {
	oc.stream(c, services.OrderStatusFetcher(oc.Store, c.Param("order_id")))
}

func (oc *OrderController) StreamActiveOrder(c *gin.Context) {
	oc.stream(c, services.LatestOrderFetcher(oc.Store, c.GetString(middlewares.PhoneKey)))
}

// statusConn is the part of *websocket.Conn a status stream writes to.
type statusConn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// pushStatus writes each snapshot to conn. A failed write closes the
// connection, which also ends the read loop waiting on it.
func pushStatus(conn statusConn, cancel context.CancelFunc) func(services.StatusSnapshot) {
	return func(s services.StatusSnapshot) {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(snapshotView(s)); err != nil {
			utils.ErrorLogger.Printf("Error writing status update: %v", err)
			cancel()
			conn.Close()
		}
	}
}

// stream pushes the current status and every change to it until the client
// disconnects. Each connection owns one poller. When the first fetch fails
// nothing is sent until a fetch succeeds.
func (oc *OrderController) stream(c *gin.Context, fetch services.StatusFetcher) {
	ws, err := oc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Error upgrading status stream: %v", err)
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	push := pushStatus(ws, cancel)
	var poller *services.StatusPoller
	initial, err := fetch(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error fetching initial status: %v", err)
		poller = services.NewUnseededStatusPoller(fetch, push)
	} else {
		if err := ws.WriteJSON(snapshotView(initial)); err != nil {
			return
		}
		poller = services.NewStatusPoller(fetch, initial, push)
	}
	if oc.PollInterval > 0 {
		poller.Interval = oc.PollInterval
	}
	poller.Start(ctx)
	defer poller.Stop()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
