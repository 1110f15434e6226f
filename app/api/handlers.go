package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/quote-relay/app/cfg"
	"github.com/lysyi3m/quote-relay/app/database"
	"github.com/lysyi3m/quote-relay/app/tasks"
)

func NewHandler(db Pinger, stateRepo database.StateRepository, deliveryRepo database.DeliveryRepository,
	scheduler tasks.TaskSchedulerInterface, generator GeneratorInterface, feedSize int, chatID int64) *Handler {
	return &Handler{
		db:           db,
		stateRepo:    stateRepo,
		deliveryRepo: deliveryRepo,
		scheduler:    scheduler,
		generator:    generator,
		feedSize:     feedSize,
		chatID:       chatID,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	deliveries, err := h.deliveryRepo.GetRecentDeliveries(database.DeliverySourcePoll, h.feedSize)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_deliveries", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(deliveries)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(deliveries)))
	if len(deliveries) > 0 {
		c.Header("X-Last-Updated", deliveries[0].DeliveredAt.In(time.Local).Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.GetVersion(),
		"database":  "ok",
	}

	status := http.StatusOK
	if err := h.db.Ping(); err != nil {
		slog.Error("Database error", "operation", "ping", "error", err)
		health["status"] = "degraded"
		health["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if cursor, err := h.stateRepo.GetCursor(); err == nil {
		health["cursor"] = cursor
	}

	c.JSON(status, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	cursor, err := h.stateRepo.GetCursor()
	if err != nil {
		slog.Error("Database error", "operation", "get_cursor", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats, err := h.deliveryRepo.GetDeliveryStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_delivery_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := map[string]interface{}{
		"cursor": cursor,
		"delivered": map[string]interface{}{
			"total":  stats.Total,
			"poll":   stats.Poll,
			"random": stats.Random,
		},
	}

	last, err := h.deliveryRepo.GetLastDelivery()
	if err != nil {
		slog.Error("Database error", "operation", "get_last_delivery", "error", err)
	} else if last != nil {
		response["last_delivery"] = map[string]interface{}{
			"quote":        last.QuoteNumber,
			"source":       last.Source,
			"chat_id":      last.ChatID,
			"delivered_at": last.DeliveredAt.In(time.Local).Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APITriggerPoll(c *gin.Context) {
	if err := h.scheduler.TriggerPoll(); err != nil {
		slog.Error("Error triggering poll", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to trigger poll",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Poll started",
	})
}

func (h *Handler) APISendRandom(c *gin.Context) {
	if err := h.scheduler.RequestRandomQuotes(h.chatID); err != nil {
		slog.Error("Error enqueueing random quotes", "chat_id", h.chatID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue random quotes",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Random quotes enqueued",
		"chat_id": h.chatID,
	})
}
