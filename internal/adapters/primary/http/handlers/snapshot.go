package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"checkpoint-registry-service/internal/adapters/primary/http/dto"
	"checkpoint-registry-service/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetRepoInfo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint id"})
		return
	}

	info, err := h.snapshotSvc.RepoInfo(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRepoInfoResponse(info))
}

func (h *Handler) PlanSnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint id"})
		return
	}

	var patterns []string
	if raw := c.Query("patterns"); raw != "" {
		patterns = strings.Split(raw, ",")
	}

	files, err := h.snapshotSvc.Plan(c.Request.Context(), id, patterns)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPlanResponse(files))
}

func (h *Handler) StartSnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint id"})
		return
	}

	var req dto.StartSnapshotRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	job, err := h.snapshotSvc.Start(c.Request.Context(), id, req.AllowPatterns)
	if err != nil {
		log.WithError(err).Error("start snapshot failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToSnapshotJobResponse(job))
}

func (h *Handler) ListSnapshots(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.SnapshotListFilter{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("checkpoint_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint_id"})
			return
		}
		filter.CheckpointID = &id
	}

	jobs, total, err := h.snapshotSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list snapshots failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.SnapshotJobResponse, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, dto.ToSnapshotJobResponse(job))
	}

	c.JSON(http.StatusOK, dto.ListSnapshotJobsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot id"})
		return
	}

	job, err := h.snapshotSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSnapshotJobResponse(job))
}

func (h *Handler) CancelSnapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot id"})
		return
	}

	if err := h.snapshotSvc.Cancel(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}
