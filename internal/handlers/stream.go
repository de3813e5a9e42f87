package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pub-order-system/internal/domain"
)

// Stream is the realtime channel: an SSE stream that delivers each
// subscribed channel's snapshot first, then delta events until the client
// disconnects. Subscription happens before the snapshot is built, so any
// transition committed while the snapshot query runs is buffered and
// delivered after it; observers apply deltas as upserts.
func (h *Handler) Stream(c *gin.Context) {
	raw := strings.Split(c.Query("channels"), ",")
	channels := make([]domain.Channel, 0, len(raw))
	for _, s := range raw {
		ch := domain.Channel(strings.TrimSpace(s))
		if ch == "" {
			continue
		}
		if !domain.ValidChannel(ch) {
			problem(c, http.StatusBadRequest, "validation_error", "unknown channel "+string(ch))
			return
		}
		channels = append(channels, ch)
	}

	conn := h.registry.Register()
	defer h.registry.Unregister(conn.ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for _, ch := range channels {
		h.registry.Subscribe(conn.ID, ch)
		snap, err := h.broadcaster.Snapshot(c.Request.Context(), ch)
		if err != nil {
			h.lg.Error("snapshot_failed", zap.String("channel", string(ch)), zap.Error(err))
			problem(c, http.StatusInternalServerError, "store_error", "snapshot unavailable")
			return
		}
		c.SSEvent("snapshot", snap)
	}
	c.Writer.Flush()

	h.lg.Info("observer_connected",
		zap.String("connection_id", conn.ID),
		zap.Strings("channels", joinChannels(channels)))

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-conn.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.lg.Info("observer_disconnected", zap.String("connection_id", conn.ID))
}

func joinChannels(chs []domain.Channel) []string {
	out := make([]string, len(chs))
	for i, ch := range chs {
		out[i] = string(ch)
	}
	return out
}
