package Controllers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartFlow(t *testing.T) {
	app := newTestApp(t)
	thali := app.seedItem("Veg Thali", "120", "Meals", true)
	coffee := app.seedItem("Cold Coffee", "85.50", "Beverages", true)

	w := app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": thali.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	notices := data(t, w)["notices"].([]interface{})
	require.Len(t, notices, 1)
	assert.Equal(t, "Veg Thali added to cart!", notices[0].(map[string]interface{})["title"])

	app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": thali.ID})
	app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": coffee.ID})

	w = app.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := data(t, w)
	assert.Equal(t, float64(3), d["item_count"])
	assert.Equal(t, "325.50", d["total"])
	assert.Equal(t, "₹325.50", d["total_display"])
	assert.Len(t, d["lines"], 2)
	assert.Empty(t, d["notices"])

	w = app.do(http.MethodPut, "/cart/items/"+thali.ID, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	d = data(t, w)
	assert.Equal(t, float64(1), d["item_count"])
	assert.Equal(t, "85.50", d["total"])

	w = app.do(http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), data(t, w)["item_count"])
}

func TestCartRemoveItem(t *testing.T) {
	app := newTestApp(t)
	samosa := app.seedItem("Samosa", "30", "Snacks", true)

	app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": samosa.ID})
	w := app.do(http.MethodDelete, "/cart/items/"+samosa.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), data(t, w)["item_count"])

	w = app.do(http.MethodDelete, "/cart/items/not-there", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartRejectsUnknownAndUnavailable(t *testing.T) {
	app := newTestApp(t)
	puff := app.seedItem("Sold Out Puff", "20", "Snacks", false)

	w := app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": puff.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(http.MethodPost, "/cart/items", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartUpdateRequiresQuantity(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodPut, "/cart/items/anything", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecommendations(t *testing.T) {
	app := newTestApp(t)
	thali := app.seedItem("Veg Thali", "120", "Meals", true)
	app.seedItem("Masala Chai", "15", "Beverages", true)
	app.recommender.recs = []string{"Masala Chai", "Veg Thali", "Pizza"}

	w := app.do(http.MethodPost, "/cart/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, data(t, w)["recommendations"])

	app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": thali.ID})
	w = app.do(http.MethodPost, "/cart/recommendations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	recs := data(t, w)["recommendations"].([]interface{})
	require.Len(t, recs, 1)
	assert.Equal(t, "Masala Chai", recs[0].(map[string]interface{})["name"])
}

func TestRecommendationsUpstreamError(t *testing.T) {
	app := newTestApp(t)
	thali := app.seedItem("Veg Thali", "120", "Meals", true)
	app.recommender.err = errors.New("quota exceeded")

	app.do(http.MethodPost, "/cart/items", map[string]string{"menu_item_id": thali.ID})
	w := app.do(http.MethodPost, "/cart/recommendations", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
