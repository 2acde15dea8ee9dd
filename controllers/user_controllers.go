package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/middlewares"
	"github.com/yeremiapane/campus-canteen/models"
	"github.com/yeremiapane/campus-canteen/utils"
)

type UserController struct {
	Store database.Store
}

func NewUserController(store database.Store) *UserController {
	return &UserController{Store: store}
}

// Login identifies the session by phone. Unknown numbers get a user row
// named "New User".
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Phone string `json:"phone" binding:"required,campus_phone"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondJSON(c, http.StatusBadRequest, utils.PhoneMessage, gin.H{"field": "phone"})
		return
	}

	ctx := c.Request.Context()
	user, err := uc.Store.GetUser(ctx, input.Phone)
	if errors.Is(err, database.ErrNotFound) {
		if err := uc.Store.UpsertUser(ctx, input.Phone, utils.DefaultNewName); err != nil {
			utils.ErrorLogger.Printf("Error creating user %s: %v", input.Phone, err)
			utils.RespondMessage(c, http.StatusInternalServerError, "Could not log you in")
			return
		}
		user = &models.User{Phone: input.Phone, Name: utils.DefaultNewName}
		utils.InfoLogger.Printf("New user registered: %s", input.Phone)
	} else if err != nil {
		utils.ErrorLogger.Printf("Error loading user %s: %v", input.Phone, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not log you in")
		return
	}

	if err := middlewares.CartFrom(c).Login(user.Phone, middlewares.CookieIdentitySink{C: c}); err != nil {
		utils.ErrorLogger.Printf("Error persisting identity for %s: %v", user.Phone, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not log you in")
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Logged in", user)
}

func (uc *UserController) Logout(c *gin.Context) {
	if err := middlewares.CartFrom(c).Logout(middlewares.CookieIdentitySink{C: c}); err != nil {
		utils.ErrorLogger.Printf("Error clearing identity: %v", err)
	}
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile returns the user with their order history, newest first.
func (uc *UserController) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	phone := c.GetString(middlewares.PhoneKey)

	user, err := uc.Store.GetUser(ctx, phone)
	if errors.Is(err, database.ErrNotFound) {
		user = &models.User{Phone: phone, Name: utils.DefaultNewName}
	} else if err != nil {
		utils.ErrorLogger.Printf("Error loading user %s: %v", phone, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not load your profile")
		return
	}

	orders, err := uc.Store.ListOrdersForPhone(ctx, phone)
	if err != nil {
		utils.ErrorLogger.Printf("Error loading orders for %s: %v", phone, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not load your profile")
		return
	}

	history := make([]gin.H, len(orders))
	for i := range orders {
		history[i] = orderView(&orders[i])
	}

	utils.RespondJSON(c, http.StatusOK, "Profile", gin.H{
		"user":   user,
		"orders": history,
	})
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || !utils.ValidName(input.Name) {
		utils.RespondJSON(c, http.StatusUnprocessableEntity, utils.NameMessage, gin.H{"field": "name"})
		return
	}

	phone := c.GetString(middlewares.PhoneKey)
	name := strings.TrimSpace(input.Name)
	if err := uc.Store.UpsertUser(c.Request.Context(), phone, name); err != nil {
		utils.ErrorLogger.Printf("Error updating name for %s: %v", phone, err)
		utils.RespondMessage(c, http.StatusInternalServerError, "Could not update your profile")
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile updated", models.User{Phone: phone, Name: name})
}
