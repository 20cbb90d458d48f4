package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"propertyregister/server/config"
	"propertyregister/server/internal/database"
	"propertyregister/server/internal/models"
	"propertyregister/server/internal/stats"
)

type Handler struct {
	db     *database.Database
	config *config.Config
	logger *logrus.Logger
}

func NewHandler(db *database.Database, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// queryContext derives a per-request context so that a caller disconnect
// or an exhausted wall-clock budget releases database resources promptly.
func (h *Handler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(h.config.Query.Timeout) * time.Second
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (h *Handler) GetProperties(c *gin.Context) {
	params, filters, sorting, err := parseQueryParams(c)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Validation Error",
				"details": verr.Detail,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation Error"})
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	sales, total, err := h.db.SearchProperties(ctx, params)
	if err != nil {
		h.renderQueryError(c, err, "Failed to get properties")
		return
	}

	c.JSON(http.StatusOK, models.PropertiesPage{
		Properties: sales,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		Filters:    filters,
		Sorting:    sorting,
	})
}

func (h *Handler) GetTrends(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	windowDays := h.config.Query.TrendWindowDays
	cutoff := time.Now().AddDate(0, 0, -windowDays)

	prices, err := h.db.RecentPrices(ctx, cutoff)
	if err != nil {
		h.renderQueryError(c, err, "Failed to get price trends")
		return
	}

	c.JSON(http.StatusOK, stats.Trends(prices, windowDays))
}

func (h *Handler) GetPriceComparison(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	year := h.config.Query.ComparisonYear
	sales, err := h.db.SalesForYear(ctx, year, h.config.Query.FetchBatchSize)
	if err != nil {
		h.renderQueryError(c, err, "Failed to get price comparison")
		return
	}

	c.JSON(http.StatusOK, stats.MonthlyDublinComparison(year, sales))
}

// ListCSVFiles lists the available source files, newest year first. A
// read failure returns an empty list, never an error status.
func (h *Handler) ListCSVFiles(c *gin.Context) {
	files, err := listCSVFiles(h.config.Import.DataDir)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read sales data directory")
		c.JSON(http.StatusOK, []string{})
		return
	}

	c.JSON(http.StatusOK, files)
}

// renderQueryError maps a database failure onto the error taxonomy:
// timeout 504, connectivity 503, anything else 500. Validation never
// reaches here.
func (h *Handler) renderQueryError(c *gin.Context, err error, msg string) {
	if errors.Is(err, context.Canceled) {
		h.logger.WithError(err).Info("Client disconnected before the query completed")
		c.Abort()
		return
	}

	h.logger.WithError(err).Error(msg)

	switch {
	case database.IsTimeout(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request Timeout", "details": msg})
	case database.IsConnectionError(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service Unavailable", "details": msg})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "details": msg})
	}
}
