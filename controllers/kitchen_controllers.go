package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/kds"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/statemachine"
	"github.com/yeremiapane/campus-canteen/utils"
)

// KitchenController is the staff side: see open orders and move them along.
type KitchenController struct {
	Store database.Store
	Hub   *kds.Hub
}

func NewKitchenController(store database.Store, hub *kds.Hub) *KitchenController {
	return &KitchenController{Store: store, Hub: hub}
}

func (kc *KitchenController) GetOpenOrders(c *gin.Context) {
	orders, err := kc.Store.ListOpenOrders(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Printf("Error listing open orders: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not load orders")
		return
	}

	views := make([]gin.H, len(orders))
	for i := range orders {
		view := orderView(&orders[i])
		if next, ok := statemachine.NextStatus(orders[i].Status); ok {
			view["next_status"] = next
		}
		views[i] = view
	}
	utils.RespondJSON(c, http.StatusOK, "Open orders", views)
}

func (kc *KitchenController) UpdateOrderStatus(c *gin.Context) {
	var input struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !input.Status.Valid() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Unknown order status"))
		return
	}

	ctx := c.Request.Context()
	orderID := c.Param("order_id")
	order, err := kc.Store.GetOrder(ctx, orderID)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Order not found"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error loading order %s: %v", orderID, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not update the order")
		return
	}

	if err := statemachine.CanTransition(order.Status, input.Status); err != nil {
		utils.RespondError(c, http.StatusConflict, err)
		return
	}

	err = kc.Store.UpdateOrderStatus(ctx, orderID, order.Status, input.Status)
	if errors.Is(err, database.ErrStatusConflict) {
		kc.respondStale(c, orderID, input.Status)
		return
	}
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Order not found"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error updating order %s: %v", orderID, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not update the order")
		return
	}

	utils.InfoLogger.Printf("Order %s moved %s -> %s", orderID, order.Status, input.Status)
	if kc.Hub != nil {
		kc.Hub.OrderStatusChanged(orderID, input.Status)
	}

	order.Status = input.Status
	utils.RespondJSON(c, http.StatusOK, "Order status updated", orderView(order))
}

// respondStale answers a status change that lost a race with another kitchen
// request, reporting where the order actually is now.
func (kc *KitchenController) respondStale(c *gin.Context, orderID string, to models.OrderStatus) {
	current, err := kc.Store.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		utils.ErrorLogger.Printf("Error reloading order %s: %v", orderID, err)
		utils.RespondError(c, http.StatusConflict, statemachine.ErrInvalidTransition)
		return
	}

	utils.InfoLogger.Printf("Order %s already moved to %s, rejecting %s", orderID, current.Status, to)
	err = statemachine.CanTransition(current.Status, to)
	if err == nil {
		err = fmt.Errorf("%w: order is now %s", statemachine.ErrInvalidTransition, current.Status)
	}
	utils.RespondError(c, http.StatusConflict, err)
}
