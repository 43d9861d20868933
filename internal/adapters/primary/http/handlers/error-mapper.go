package handlers

import (
	"errors"
	"net/http"

	"checkpoint-registry-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrCheckpointNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound),
		errors.Is(err, domain.ErrInstallNotFound),
		errors.Is(err, domain.ErrRepoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrCheckpointNameConflict),
		errors.Is(err, domain.ErrSnapshotRunning),
		errors.Is(err, domain.ErrInstallExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidCheckpointName),
		errors.Is(err, domain.ErrInvalidRepoID),
		errors.Is(err, domain.ErrInvalidLocalPath),
		errors.Is(err, domain.ErrInvalidAllowPattern),
		errors.Is(err, domain.ErrInvalidInstallMethod),
		errors.Is(err, domain.ErrCheckpointSyncing),
		errors.Is(err, domain.ErrCheckpointNotReady),
		errors.Is(err, domain.ErrSnapshotNotRunning),
		errors.Is(err, domain.ErrHostDirNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Upstream hub errors
	case errors.Is(err, domain.ErrHubForbidden):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrHubUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
