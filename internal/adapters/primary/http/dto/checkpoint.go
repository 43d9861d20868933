package dto

import (
	"time"

	"github.com/google/uuid"

	"checkpoint-registry-service/internal/core/domain"
)

type CreateCheckpointRequest struct {
	Name      string            `json:"name" binding:"required,max=100"`
	RepoID    string            `json:"repo_id" binding:"required"`
	Revision  string            `json:"revision"`
	LocalPath string            `json:"local_path"`
	Labels    map[string]string `json:"labels"`
}

type UpdateCheckpointRequest struct {
	Name     *string           `json:"name"`
	Revision *string           `json:"revision"`
	Labels   map[string]string `json:"labels"`
}

type CheckpointResponse struct {
	ID           uuid.UUID         `json:"id"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
	Name         string            `json:"name"`
	RepoID       string            `json:"repo_id"`
	Revision     string            `json:"revision"`
	LocalPath    string            `json:"local_path"`
	Status       string            `json:"status"`
	SizeBytes    int64             `json:"size_bytes"`
	FileCount    int               `json:"file_count"`
	LastSyncedAt *string           `json:"last_synced_at"`
	Labels       map[string]string `json:"labels"`
}

type ListCheckpointsResponse struct {
	Items      []CheckpointResponse `json:"items"`
	Total      int                  `json:"total"`
	PageSize   int                  `json:"page_size"`
	NextOffset int                  `json:"next_offset"`
}

type CheckpointFileResponse struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

type ListCheckpointFilesResponse struct {
	Items []CheckpointFileResponse `json:"items"`
	Total int                      `json:"total"`
}

func ToCheckpointResponse(cp *domain.Checkpoint) CheckpointResponse {
	resp := CheckpointResponse{
		ID:        cp.ID,
		CreatedAt: cp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: cp.UpdatedAt.Format(time.RFC3339),
		Name:      cp.Name,
		RepoID:    cp.RepoID,
		Revision:  cp.Revision,
		LocalPath: cp.LocalPath,
		Status:    string(cp.Status),
		SizeBytes: cp.SizeBytes,
		FileCount: cp.FileCount,
		Labels:    cp.Labels,
	}
	if cp.LastSyncedAt != nil {
		s := cp.LastSyncedAt.Format(time.RFC3339)
		resp.LastSyncedAt = &s
	}
	return resp
}

func ToCheckpointFileResponse(f domain.CheckpointFile) CheckpointFileResponse {
	return CheckpointFileResponse{Path: f.Path, SizeBytes: f.SizeBytes}
}
