package dto

import (
	"time"

	"github.com/google/uuid"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

type StartSnapshotRequest struct {
	AllowPatterns []string `json:"allow_patterns"`
}

type SnapshotJobResponse struct {
	ID            uuid.UUID `json:"id"`
	CheckpointID  uuid.UUID `json:"checkpoint_id"`
	Status        string    `json:"status"`
	AllowPatterns []string  `json:"allow_patterns"`
	TotalFiles    int       `json:"total_files"`
	DoneFiles     int       `json:"done_files"`
	TotalBytes    int64     `json:"total_bytes"`
	DoneBytes     int64     `json:"done_bytes"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     string    `json:"created_at"`
	StartedAt     *string   `json:"started_at"`
	FinishedAt    *string   `json:"finished_at"`
}

type ListSnapshotJobsResponse struct {
	Items      []SnapshotJobResponse `json:"items"`
	Total      int                   `json:"total"`
	PageSize   int                   `json:"page_size"`
	NextOffset int                   `json:"next_offset"`
}

type PlanItemResponse struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	LFS       bool   `json:"lfs"`
}

type PlanResponse struct {
	Items      []PlanItemResponse `json:"items"`
	TotalFiles int                `json:"total_files"`
	TotalBytes int64              `json:"total_bytes"`
}

type RepoInfoResponse struct {
	SHA          string   `json:"sha"`
	LastModified string   `json:"last_modified"`
	Files        []string `json:"files"`
}

func ToSnapshotJobResponse(job *domain.SnapshotJob) SnapshotJobResponse {
	resp := SnapshotJobResponse{
		ID:            job.ID,
		CheckpointID:  job.CheckpointID,
		Status:        string(job.Status),
		AllowPatterns: job.AllowPatterns,
		TotalFiles:    job.TotalFiles,
		DoneFiles:     job.DoneFiles,
		TotalBytes:    job.TotalBytes,
		DoneBytes:     job.DoneBytes,
		Error:         job.Error,
		CreatedAt:     job.CreatedAt.Format(time.RFC3339),
	}
	if job.StartedAt != nil {
		s := job.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &s
	}
	if job.FinishedAt != nil {
		s := job.FinishedAt.Format(time.RFC3339)
		resp.FinishedAt = &s
	}
	return resp
}

func ToPlanResponse(files []ports.HubFile) PlanResponse {
	resp := PlanResponse{Items: make([]PlanItemResponse, 0, len(files))}
	for _, f := range files {
		resp.Items = append(resp.Items, PlanItemResponse{Path: f.Path, SizeBytes: f.Size, LFS: f.LFS})
		resp.TotalBytes += f.Size
	}
	resp.TotalFiles = len(files)
	return resp
}

func ToRepoInfoResponse(info *ports.RepoInfo) RepoInfoResponse {
	return RepoInfoResponse{
		SHA:          info.SHA,
		LastModified: info.LastModified.Format(time.RFC3339),
		Files:        info.Files,
	}
}
