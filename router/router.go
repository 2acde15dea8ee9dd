package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/campus-canteen/cart"
	"github.com/yeremiapane/campus-canteen/controllers"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/kds"
	"github.com/yeremiapane/campus-canteen/middlewares"
	"github.com/yeremiapane/campus-canteen/services"
	"github.com/yeremiapane/campus-canteen/utils"
)

// Deps are the long-lived collaborators built in main.
type Deps struct {
	Store       database.Store
	Registry    *cart.Registry
	Orders      *services.OrderService
	Hub         *kds.Hub
	Recommender services.Recommender

	AllowedOrigin string
	KitchenAPIKey string
	PollInterval  time.Duration
	RequestsPerIP int
}

// RegisterValidators adds the campus_phone binding tag.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("campus_phone", func(fl validator.FieldLevel) bool {
			return utils.ValidPhone(fl.Field().String())
		})
	}
}

func SetupRouter(deps Deps) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.AllowedOrigin))
	if deps.RequestsPerIP > 0 {
		r.Use(middlewares.NewRateLimiter(deps.RequestsPerIP, time.Minute).RateLimit())
	}

	upgrader := controllers.NewUpgrader(deps.AllowedOrigin)
	menuController := controllers.NewMenuController(deps.Store)
	cartController := controllers.NewCartController(deps.Store)
	userController := controllers.NewUserController(deps.Store)
	orderController := controllers.NewOrderController(deps.Store, deps.Orders, upgrader, deps.PollInterval)
	recommendationController := controllers.NewRecommendationController(deps.Store, deps.Recommender)
	kitchenController := controllers.NewKitchenController(deps.Store, deps.Hub)
	kdsController := controllers.NewKDSController(deps.Hub, upgrader)

	r.GET("/ping", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "pong", nil)
	})
	r.GET("/menu", menuController.GetMenu)

	session := r.Group("/")
	session.Use(middlewares.SessionMiddleware(deps.Registry))
	{
		loginLimiter := middlewares.NewStrictRateLimiter(12*time.Second, 5)
		session.POST("/login", loginLimiter.Limit(), userController.Login)
		session.POST("/logout", userController.Logout)

		session.GET("/cart", cartController.GetCart)
		session.DELETE("/cart", cartController.ClearCart)
		session.POST("/cart/items", cartController.AddItem)
		session.PUT("/cart/items/:item_id", cartController.UpdateItem)
		session.DELETE("/cart/items/:item_id", cartController.RemoveItem)
		session.POST("/cart/recommendations", recommendationController.Recommend)

		session.GET("/orders/:order_id", orderController.GetOrder)
		session.GET("/orders/:order_id/status", orderController.GetOrderStatus)
		session.GET("/orders/:order_id/stream", orderController.StreamOrder)

		loggedIn := session.Group("/")
		loggedIn.Use(middlewares.RequireLogin())
		{
			loggedIn.POST("/checkout", orderController.Checkout)
			loggedIn.GET("/orders/active", orderController.GetActiveOrder)
			loggedIn.GET("/orders/active/stream", orderController.StreamActiveOrder)
			loggedIn.GET("/profile", userController.GetProfile)
			loggedIn.PATCH("/profile", userController.UpdateProfile)
		}
	}

	kitchen := r.Group("/kitchen")
	kitchen.Use(middlewares.KitchenAuth(deps.KitchenAPIKey))
	{
		kitchen.GET("/orders", kitchenController.GetOpenOrders)
		kitchen.PATCH("/orders/:order_id/status", kitchenController.UpdateOrderStatus)
		kitchen.GET("/ws", kdsController.KDSHandler)
	}

	return r
}
