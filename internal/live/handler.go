package live

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"timeclock-backend/internal/events"
)

// keepalive comments prevent proxies from timing out idle streams.
const keepaliveInterval = 15 * time.Second

type Handler struct {
	sub events.Subscriber
}

func RegisterRoutes(r gin.IRoutes, sub events.Subscriber) {
	h := &Handler{sub: sub}
	r.GET("/live/attendances", h.Stream)
}

// GET /live/attendances?area=<id>
// Streams attendance registrations as SSE. Without area the client gets
// every registration; with area only that area's events.
func (h *Handler) Stream(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	topic := events.TopicRegistered
	if v := c.Query("area"); v != "" {
		areaID, err := strconv.ParseUint(v, 10, 32)
		if err != nil || areaID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "area must be a positive number"})
			return
		}
		topic = events.TopicAreaRegistered(uint(areaID))
	}

	ch, cancel, err := h.sub.Subscribe(topic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscribe failed"})
		return
	}
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	var id uint64
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			id++
			fmt.Fprintf(c.Writer, "id:%d\n", id)
			fmt.Fprintf(c.Writer, "event:attendance\n")
			fmt.Fprintf(c.Writer, "data:%s\n\n", msg)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprintf(c.Writer, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}
