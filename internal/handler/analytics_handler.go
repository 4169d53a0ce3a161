package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/phone-slot-api/internal/dto"
	"github.com/noah-isme/phone-slot-api/internal/models"
	"github.com/noah-isme/phone-slot-api/internal/repository"
	"github.com/noah-isme/phone-slot-api/internal/service"
	appErrors "github.com/noah-isme/phone-slot-api/pkg/errors"
	"github.com/noah-isme/phone-slot-api/pkg/response"
)

// AnalyticsHandler wires HTTP endpoints to the analytics and reset services.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	reset     *service.ResetService
	feed      *repository.ChangeFeed
	heartbeat time.Duration
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, reset *service.ResetService,
	feed *repository.ChangeFeed, heartbeat time.Duration, logger *zap.Logger) *AnalyticsHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{analytics: analytics, reset: reset, feed: feed, heartbeat: heartbeat, logger: logger}
}

func queryFromContext(c *gin.Context) models.AnalyticsQuery {
	q := models.AnalyticsQuery{
		Search:  c.Query("search"),
		SortKey: c.DefaultQuery("sort", models.SortByMissed),
	}
	if raw := c.Query("grade"); raw != "" {
		if grade, err := strconv.Atoi(raw); err == nil {
			q.Grade = &grade
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			q.Limit = limit
		}
	}
	return q
}

// Lifetime returns the filtered lifetime counter snapshot.
func (h *AnalyticsHandler) Lifetime(c *gin.Context) {
	rows, cached, err := h.analytics.Lifetime(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	rows = service.ApplyPipeline(rows, queryFromContext(c))
	response.JSON(c, http.StatusOK, dto.NewAnalyticsResponse(rows, "lifetime"), map[string]interface{}{"cached": cached})
}

// Range replays daily reports between two dates into a derived snapshot.
func (h *AnalyticsHandler) Range(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from and to query parameters are required"))
		return
	}

	rows, err := h.analytics.Range(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows = service.ApplyPipeline(rows, queryFromContext(c))

	res := dto.NewAnalyticsResponse(rows, "range")
	res.From = from
	res.To = to
	response.JSON(c, http.StatusOK, res)
}

// ExportCSV downloads the filtered lifetime snapshot as CSV.
func (h *AnalyticsHandler) ExportCSV(c *gin.Context) {
	rows, _, err := h.analytics.Lifetime(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	rows = service.ApplyPipeline(rows, queryFromContext(c))

	payload, err := h.analytics.ExportCSV(rows)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("analytics-%s.csv", time.Now().Format(models.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// Stream pushes the lifetime snapshot over SSE whenever persisted analytics
// state changes. A heartbeat comment keeps idle proxies from closing the
// connection.
func (h *AnalyticsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	changes, cleanup, err := h.feed.Listen(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cleanup()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "streaming unsupported"))
		return
	}

	send := func() bool {
		rows, _, err := h.analytics.Lifetime(ctx)
		if err != nil {
			h.logger.Warn("stream snapshot fetch failed", zap.Error(err))
			return false
		}
		payload, err := json.Marshal(dto.NewAnalyticsResponse(service.ApplyPipeline(rows, queryFromContext(c)), "lifetime"))
		if err != nil {
			return false
		}
		fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", payload)
		flusher.Flush()
		return true
	}

	// Initial snapshot so clients render without waiting for a change.
	if !send() {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if !send() {
				return
			}
		case <-ticker.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// Reset performs the passcode-gated bulk wipe.
func (h *AnalyticsHandler) Reset(c *gin.Context) {
	var req dto.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset payload"))
		return
	}

	summary, err := h.reset.Reset(c.Request.Context(), req.Passcode)
	if err != nil {
		if summary != nil {
			// Partial wipe: report what was deleted so the operator re-runs.
			response.JSON(c, http.StatusInternalServerError, summary, map[string]interface{}{"error": err.Error()})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
