package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luqq/sonarqube/internal/rule"
	"github.com/luqq/sonarqube/internal/search"
	"github.com/luqq/sonarqube/pkg/logger"
)

type IndexHandlers struct {
	rules  *rule.Index
	logger logger.Logger
}

func New(rules *rule.Index, log logger.Logger) *IndexHandlers {
	return &IndexHandlers{rules: rules, logger: log}
}

func (h *IndexHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *IndexHandlers) GetRule(c *gin.Context) {
	key := c.Param("key")

	r, found, err := h.rules.GetByKey(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found", "key": key})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *IndexHandlers) UpsertRule(c *gin.Context) {
	var r rule.Rule
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if r.Key == "" {
		r.Key = uuid.NewString()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}

	ctx := c.Request.Context()
	if err := h.rules.UpsertByDto(ctx, r); err != nil {
		var bulkErr *search.BulkError
		if errors.As(err, &bulkErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "failed_items": len(bulkErr.Items)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.rules.SetLastSynchronization(ctx, r.UpdatedAt); err != nil {
		h.logger.Warn("Could not record synchronization time", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"key": r.Key})
}

func (h *IndexHandlers) DeleteRule(c *gin.Context) {
	key := c.Param("key")

	// Best-effort delete; the index layer logs failures.
	h.rules.DeleteByKey(c.Request.Context(), key)
	c.JSON(http.StatusAccepted, gin.H{"key": key})
}

func (h *IndexHandlers) GetIndexStat(c *gin.Context) {
	stat, err := h.rules.GetIndexStat(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"index":          h.rules.GetIndexName(),
		"document_count": stat.DocumentCount,
		"last_update":    stat.LastUpdate,
	})
}

func (h *IndexHandlers) RefreshIndex(c *gin.Context) {
	if err := h.rules.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": h.rules.GetIndexName()})
}
