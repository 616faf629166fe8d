package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sanpolsito/ultimate-frisbee-stats/internal/ws"
)

// WSHandler exposes the live update stream of a match.
type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler { return &WSHandler{hub: hub} }

func (h *WSHandler) Register(r *gin.RouterGroup) {
	r.GET("/matches/:match_id/ws", h.subscribe)
}

func (h *WSHandler) subscribe(c *gin.Context) {
	// The upgrade takes over the connection; errors are already logged by the hub.
	_ = ws.ServeWS(h.hub, c.Writer, c.Request, matchID(c))
}
