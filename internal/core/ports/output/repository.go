package ports

import (
	"context"

	"github.com/google/uuid"

	"checkpoint-registry-service/internal/core/domain"
)

type CheckpointListFilter struct {
	Status string
	Search string
	SortBy string
	Order  string
	Limit  int
	Offset int
}

type SnapshotListFilter struct {
	CheckpointID *uuid.UUID
	Status       string
	Limit        int
	Offset       int
}

type CheckpointRepository interface {
	Create(ctx context.Context, cp *domain.Checkpoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Checkpoint, error)
	GetByParams(ctx context.Context, name string, repoID string) (*domain.Checkpoint, error)
	Update(ctx context.Context, cp *domain.Checkpoint) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter CheckpointListFilter) ([]*domain.Checkpoint, int, error)
}

type SnapshotJobRepository interface {
	Create(ctx context.Context, job *domain.SnapshotJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SnapshotJob, error)
	Update(ctx context.Context, job *domain.SnapshotJob) error
	List(ctx context.Context, filter SnapshotListFilter) ([]*domain.SnapshotJob, int, error)
	ActiveForCheckpoint(ctx context.Context, checkpointID uuid.UUID) (*domain.SnapshotJob, error)
}

type InstallRepository interface {
	Create(ctx context.Context, install *domain.Install) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Install, error)
	GetByHostPath(ctx context.Context, hostPath string) (*domain.Install, error)
	Update(ctx context.Context, install *domain.Install) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, checkpointID *uuid.UUID) ([]*domain.Install, error)
}
