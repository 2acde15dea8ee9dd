package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
)

type MenuController struct {
	Store database.Store
}

func NewMenuController(store database.Store) *MenuController {
	return &MenuController{Store: store}
}

type menuCategory struct {
	Name  string            `json:"name"`
	Items []models.MenuItem `json:"items"`
}

// GetMenu lists available items grouped by category, in menu order.
func (mc *MenuController) GetMenu(c *gin.Context) {
	items, err := mc.Store.GetAvailableMenuItems(c.Request.Context())
	if err != nil {
		utils.ErrorLogger.Printf("Error loading menu: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not load the menu")
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"categories": groupByCategory(items),
		"count":      len(items),
	})
}

func groupByCategory(items []models.MenuItem) []menuCategory {
	index := make(map[string]int)
	categories := make([]menuCategory, 0)
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(categories)
			index[item.Category] = i
			categories = append(categories, menuCategory{Name: item.Category})
		}
		categories[i].Items = append(categories[i].Items, item)
	}
	return categories
}
