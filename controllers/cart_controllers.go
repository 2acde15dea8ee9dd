package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/cart"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/middlewares"
	"github.com/yeremiapane/campus-canteen/utils"
)

type CartController struct {
	Store database.Store
}

func NewCartController(store database.Store) *CartController {
	return &CartController{Store: store}
}

type cartLineView struct {
	cart.Line
	Subtotal        string `json:"subtotal"`
	SubtotalDisplay string `json:"subtotal_display"`
}

// cartView renders the cart and drains its pending notices.
func cartView(store *cart.Store) gin.H {
	snapshot := store.Snapshot()
	lines := snapshot.Lines
	views := make([]cartLineView, len(lines))
	for i, line := range lines {
		sub := line.Subtotal()
		views[i] = cartLineView{Line: line, Subtotal: sub.StringFixed(2), SubtotalDisplay: utils.FormatRupee(sub)}
	}

	total := cart.Total(lines)
	return gin.H{
		"lines":         views,
		"item_count":    cart.Count(lines),
		"total":         total.StringFixed(2),
		"total_display": utils.FormatRupee(total),
		"logged_in":     snapshot.Phone != "",
		"phone":         snapshot.Phone,
		"notices":       store.DrainNotices(),
	}
}

func (cc *CartController) GetCart(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Cart", cartView(middlewares.CartFrom(c)))
}

func (cc *CartController) AddItem(c *gin.Context) {
	var input struct {
		MenuItemID string `json:"menu_item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := cc.Store.GetMenuItem(c.Request.Context(), input.MenuItemID)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Menu item not found"))
		return
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error loading menu item %s: %v", input.MenuItemID, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not add the item")
		return
	}
	if !item.IsAvailable {
		utils.RespondError(c, http.StatusConflict, fmt.Errorf("%s is currently unavailable", item.Name))
		return
	}

	store := middlewares.CartFrom(c)
	store.AddItem(*item)
	utils.RespondJSON(c, http.StatusOK, "Item added", cartView(store))
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	var input struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	store := middlewares.CartFrom(c)
	store.SetQuantity(c.Param("item_id"), *input.Quantity)
	utils.RespondJSON(c, http.StatusOK, "Cart updated", cartView(store))
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	store := middlewares.CartFrom(c)
	store.RemoveItem(c.Param("item_id"))
	utils.RespondJSON(c, http.StatusOK, "Item removed", cartView(store))
}

func (cc *CartController) ClearCart(c *gin.Context) {
	store := middlewares.CartFrom(c)
	store.Clear()
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", cartView(store))
}
