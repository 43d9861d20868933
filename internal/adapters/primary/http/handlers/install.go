package handlers

import (
	"net/http"

	"checkpoint-registry-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) ListInstalls(c *gin.Context) {
	var checkpointID *uuid.UUID
	if raw := c.Query("checkpoint_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkpoint_id"})
			return
		}
		checkpointID = &id
	}

	installs, err := h.installSvc.List(c.Request.Context(), checkpointID)
	if err != nil {
		log.WithError(err).Error("list installs failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.InstallResponse, 0, len(installs))
	for _, install := range installs {
		items = append(items, dto.ToInstallResponse(install))
	}

	c.JSON(http.StatusOK, dto.ListInstallsResponse{Items: items, Total: len(items)})
}

func (h *Handler) GetInstall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid install id"})
		return
	}

	install, err := h.installSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInstallResponse(install))
}

func (h *Handler) CreateInstall(c *gin.Context) {
	var req dto.CreateInstallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	install, err := h.installSvc.Install(c.Request.Context(), req.CheckpointID, req.Method)
	if err != nil {
		log.WithError(err).Error("create install failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInstallResponse(install))
}

func (h *Handler) VerifyInstall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid install id"})
		return
	}

	install, err := h.installSvc.Verify(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInstallResponse(install))
}

func (h *Handler) DeleteInstall(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid install id"})
		return
	}

	if err := h.installSvc.Uninstall(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
