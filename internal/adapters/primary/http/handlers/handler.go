package handlers

import (
	"checkpoint-registry-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	checkpointSvc *services.CheckpointService
	snapshotSvc   *services.SnapshotService
	installSvc    *services.InstallService
}

func New(
	checkpointSvc *services.CheckpointService,
	snapshotSvc *services.SnapshotService,
	installSvc *services.InstallService,
) *Handler {
	return &Handler{
		checkpointSvc: checkpointSvc,
		snapshotSvc:   snapshotSvc,
		installSvc:    installSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Checkpoints
	r.GET("/checkpoints", h.ListCheckpoints)
	r.GET("/checkpoints/:id", h.GetCheckpoint)
	r.GET("/checkpoint", h.GetCheckpointByParams)
	r.POST("/checkpoints", h.CreateCheckpoint)
	r.PATCH("/checkpoints/:id", h.UpdateCheckpoint)
	r.DELETE("/checkpoints/:id", h.DeleteCheckpoint)
	r.GET("/checkpoints/:id/files", h.ListCheckpointFiles)

	// Hub metadata and snapshot planning
	r.GET("/checkpoints/:id/repo", h.GetRepoInfo)
	r.GET("/checkpoints/:id/plan", h.PlanSnapshot)

	// Snapshot jobs
	r.POST("/checkpoints/:id/snapshots", h.StartSnapshot)
	r.GET("/snapshots", h.ListSnapshots)
	r.GET("/snapshots/:id", h.GetSnapshot)
	r.POST("/snapshots/:id/cancel", h.CancelSnapshot)

	// Host installs
	r.GET("/installs", h.ListInstalls)
	r.GET("/installs/:id", h.GetInstall)
	r.POST("/installs", h.CreateInstall)
	r.POST("/installs/:id/verify", h.VerifyInstall)
	r.DELETE("/installs/:id", h.DeleteInstall)
}
