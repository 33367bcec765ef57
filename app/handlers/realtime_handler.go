package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/leadboard/app/middleware"
	"github.com/amirphl/leadboard/app/realtime"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// RealtimeHandler streams change-feed events as server-sent events
type RealtimeHandler struct {
	baseHandler
	hub       *realtime.Hub
	heartbeat time.Duration
}

func NewRealtimeHandler(hub *realtime.Hub, heartbeat time.Duration) *RealtimeHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &RealtimeHandler{baseHandler: newBaseHandler(), hub: hub, heartbeat: heartbeat}
}

// Stream subscribes the caller to row changes
// @Summary Change feed
// @Description Server-sent events of {table, op, id, at}. Changes made by the caller in the last few seconds are not echoed back.
// @Tags Realtime
// @Produce text/event-stream
// @Param tables query string false "Comma separated: leads,categories,videos (default all)"
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 200 {string} string "Event stream"
// @Router /api/v1/realtime/stream [get]
func (h *RealtimeHandler) Stream(c fiber.Ctx) error {
	actor, ok, err := h.actor(c)
	if !ok {
		return err
	}

	sub := h.hub.Subscribe(actor.UserID, realtime.ParseTables(c.Query("tables")))
	middleware.RealtimeSubscribers.Inc()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer middleware.RealtimeSubscribers.Dec()
		defer h.hub.Unsubscribe(sub)

		if err := writeSSE(w, 0, "connected", fiber.Map{"status": "connected"}); err != nil {
			return
		}

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		var eventID uint64
		for {
			select {
			case ev, open := <-sub.Events():
				if !open {
					return
				}
				eventID++
				if err := writeSSE(w, eventID, "change", ev); err != nil {
					logrus.WithError(err).Debug("realtime client disconnected")
					return
				}
			case <-ticker.C:
				if err := writeSSE(w, 0, "heartbeat", fiber.Map{}); err != nil {
					return
				}
			}
		}
	})
}

func writeSSE(w *bufio.Writer, id uint64, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	if id > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
