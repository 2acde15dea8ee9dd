package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/campus-canteen/cart"
	"github.com/yeremiapane/campus-canteen/config"
	"github.com/yeremiapane/campus-canteen/database"
	"github.com/yeremiapane/campus-canteen/kds"
	"github.com/yeremiapane/campus-canteen/router"
	"github.com/yeremiapane/campus-canteen/services"
	"github.com/yeremiapane/campus-canteen/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) call(method, path string, body interface{}, header ...string) map[string]interface{} {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies = append(c.cookies, ck)
	}

	var resp map[string]interface{}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.Equal(c.t, true, resp["status"], "%s %s: %s", method, path, w.Body.String())
	return resp
}

// TestEndToEndIntegration walks a customer from the seeded menu to a
// collected order while the kitchen advances it.
func TestEndToEndIntegration(t *testing.T) {
	cfg := config.Config{DBDriver: "sqlite", DBDSN: "file:integration?mode=memory&cache=shared"}
	db, err := config.InitDB(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.SeedMenu(db, "database/seeds/menu.sql"))

	store := database.NewGormStore(db)
	hub := kds.NewHub()
	r := router.SetupRouter(router.Deps{
		Store:         store,
		Registry:      cart.NewRegistry(time.Hour),
		Orders:        services.NewOrderService(store, hub),
		Hub:           hub,
		Recommender:   newRecommender(context.Background(), cfg),
		KitchenAPIKey: "integration-key",
	})
	c := &client{t: t, handler: r}

	// 1. Menu from the seed file
	menu := c.call(http.MethodGet, "/menu", nil)["data"].(map[string]interface{})
	assert.Equal(t, float64(12), menu["count"])
	first := menu["categories"].([]interface{})[0].(map[string]interface{})
	item := first["items"].([]interface{})[0].(map[string]interface{})

	// 2. Cart, login, checkout
	c.call(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": item["id"].(string)})
	c.call(http.MethodPost, "/login", map[string]string{"phone": "9123456780"})
	placed := c.call(http.MethodPost, "/checkout", map[string]string{"name": "Integration"})
	receipt := placed["data"].(map[string]interface{})["receipt"].(map[string]interface{})
	orderID := receipt["order_id"].(string)

	// 3. Kitchen moves it through every stage
	for _, status := range []string{"Preparing", "Ready for Pickup", "Completed"} {
		c.call(http.MethodPatch, "/kitchen/orders/"+orderID+"/status", map[string]string{"status": status}, "X-Kitchen-Key", "integration-key")
	}

	// 4. Customer sees the finished order
	active := c.call(http.MethodGet, "/orders/active", nil)["data"].(map[string]interface{})
	assert.Equal(t, orderID, active["order_id"])
	assert.Equal(t, "Completed", active["status"])

	// 5. Recommendations are off without an API key
	c.call(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": item["id"].(string)})
	req := httptest.NewRequest(http.MethodPost, "/cart/recommendations", nil)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
