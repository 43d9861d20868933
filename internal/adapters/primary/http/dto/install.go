package dto

import (
	"time"

	"github.com/google/uuid"

	"checkpoint-registry-service/internal/core/domain"
)

type CreateInstallRequest struct {
	CheckpointID uuid.UUID `json:"checkpoint_id" binding:"required"`
	Method       string    `json:"method"`
}

type InstallResponse struct {
	ID           uuid.UUID `json:"id"`
	CheckpointID uuid.UUID `json:"checkpoint_id"`
	HostPath     string    `json:"host_path"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	CreatedAt    string    `json:"created_at"`
	UpdatedAt    string    `json:"updated_at"`
}

type ListInstallsResponse struct {
	Items []InstallResponse `json:"items"`
	Total int               `json:"total"`
}

func ToInstallResponse(install *domain.Install) InstallResponse {
	return InstallResponse{
		ID:           install.ID,
		CheckpointID: install.CheckpointID,
		HostPath:     install.HostPath,
		Method:       string(install.Method),
		Status:       string(install.Status),
		CreatedAt:    install.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    install.UpdatedAt.Format(time.RFC3339),
	}
}
