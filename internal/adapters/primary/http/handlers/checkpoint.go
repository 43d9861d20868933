package handlers

import (
	"net/http"
	"strconv"

	"checkpoint-registry-service/internal/adapters/primary/http/dto"
	"checkpoint-registry-service/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListCheckpoints(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.CheckpointListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Limit:  limit,
		Offset: offset,
	}

	checkpoints, total, err := h.checkpointSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list checkpoints failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.CheckpointResponse, 0, len(checkpoints))
	for _, cp := range checkpoints {
		items = append(items, dto.ToCheckpointResponse(cp))
	}

	c.JSON(http.StatusOK, dto.ListCheckpointsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetCheckpoint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint id"})
		return
	}

	cp, err := h.checkpointSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCheckpointResponse(cp))
}

func (h *Handler) GetCheckpointByParams(c *gin.Context) {
	name := c.Query("name")
	repoID := c.Query("repo_id")

	cp, err := h.checkpointSvc.GetByParams(c.Request.Context(), name, repoID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCheckpointResponse(cp))
}

func (h *Handler) CreateCheckpoint(c *gin.Context) {
	var req dto.CreateCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp, err := h.checkpointSvc.Create(c.Request.Context(), req.Name, req.RepoID, req.Revision, req.LocalPath, req.Labels)
	if err != nil {
		log.WithError(err).Error("create checkpoint failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCheckpointResponse(cp))
}

func (h *Handler) UpdateCheckpoint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint id"})
		return
	}

	var req dto.UpdateCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Revision != nil {
		updates["revision"] = *req.Revision
	}
	if req.Labels != nil {
		updates["labels"] = req.Labels
	}

	cp, err := h.checkpointSvc.Update(c.Request.Context(), id, updates)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCheckpointResponse(cp))
}

func (h *Handler) DeleteCheckpoint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint id"})
		return
	}

	if err := h.checkpointSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCheckpointFiles(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint id"})
		return
	}

	files, err := h.checkpointSvc.Files(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.CheckpointFileResponse, 0, len(files))
	for _, f := range files {
		items = append(items, dto.ToCheckpointFileResponse(f))
	}

	c.JSON(http.StatusOK, dto.ListCheckpointFilesResponse{Items: items, Total: len(items)})
}
