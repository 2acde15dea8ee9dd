package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/middlewares"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/services"
	"github.com/yeremiapane/campus-canteen/utils"
)

type RecommendationController struct {
	Store       database.Store
	Recommender services.Recommender
}

func NewRecommendationController(store database.Store, recommender services.Recommender) *RecommendationController {
	return &RecommendationController{Store: store, Recommender: recommender}
}

// Recommend suggests menu items that complement the session cart.
func (rc *RecommendationController) Recommend(c *gin.Context) {
	lines := middlewares.CartFrom(c).Lines()
	if len(lines) == 0 {
		utils.RespondJSON(c, http.StatusOK, "Add something to your cart first", gin.H{"recommendations": []models.MenuItem{}})
		return
	}

	names := make([]string, len(lines))
	for i, line := range lines {
		names[i] = line.Item.Name
	}

	ctx := c.Request.Context()
	recs, err := rc.Recommender.Recommend(ctx, names)
	if errors.Is(err, services.ErrRecommenderDisabled) {
		utils.RespondError(c, http.StatusServiceUnavailable, err)
		return
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error getting recommendations: %v", err)
		utils.RespondMessage(c, http.StatusBadGateway, "Could not get recommendations right now")
		return
	}

	catalog, err := rc.Store.GetAvailableMenuItems(ctx)
	if err != nil {
		utils.ErrorLogger.Printf("Error loading menu for recommendations: %v", err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not get recommendations right now")
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Recommendations", gin.H{
		"recommendations": services.FilterRecommendations(recs, names, catalog),
	})
}
