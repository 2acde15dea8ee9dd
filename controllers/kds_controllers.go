package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/campus-canteen/kds"
	"github.com/yeremiapane/campus-canteen/utils"
)

// NewUpgrader accepts websocket handshakes from allowedOrigin, or from
// anywhere when it is empty or "*".
func NewUpgrader(allowedOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedOrigin == "" || allowedOrigin == "*" || origin == "" || origin == allowedOrigin
		},
	}
}

type KDSController struct {
	Hub      *kds.Hub
	Upgrader websocket.Upgrader
}

func NewKDSController(hub *kds.Hub, upgrader websocket.Upgrader) *KDSController {
	return &KDSController{Hub: hub, Upgrader: upgrader}
}

// KDSHandler keeps a kitchen display connected until it hangs up.
func (kc *KDSController) KDSHandler(c *gin.Context) {
	ws, err := kc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Error upgrading kitchen display: %v", err)
		return
	}

	station := c.DefaultQuery("station", "kitchen")
	kc.Hub.Register(ws, station)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	kc.Hub.Unregister(ws)
}
