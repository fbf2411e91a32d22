package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardfolio-backend/internal/sse"
)

type RealtimeHandler struct {
	hub *sse.SSEHub
}

func NewRealtimeHandler(hub *sse.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

func (rh *RealtimeHandler) Stream(c *gin.Context) {
	client := rh.hub.NewSSEClient()
	rh.hub.AddChannel(client, sse.ChannelDirectory)
	defer rh.hub.RemoveClient(client)
	rh.hub.ServeHTTP(c.Writer, c.Request, client)
}
