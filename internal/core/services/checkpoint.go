package services

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

type CheckpointService struct {
	repo    ports.CheckpointRepository
	jobRepo ports.SnapshotJobRepository
	store   ports.CheckpointStore
	baseDir string
}

func NewCheckpointService(repo ports.CheckpointRepository, jobRepo ports.SnapshotJobRepository, store ports.CheckpointStore, baseDir string) *CheckpointService {
	return &CheckpointService{repo: repo, jobRepo: jobRepo, store: store, baseDir: baseDir}
}

func (s *CheckpointService) Create(ctx context.Context, name, repoID, revision, localPath string, labels map[string]string) (*domain.Checkpoint, error) {
	if name == "" {
		return nil, domain.ErrInvalidCheckpointName
	}
	if err := domain.ValidateRepoID(repoID); err != nil {
		return nil, err
	}
	if revision == "" {
		revision = "main"
	}
	if localPath == "" {
		localPath = filepath.Join(s.baseDir, name)
	} else {
		localPath = filepath.Clean(localPath)
		// A relative path escaping the working directory would materialize
		// the checkpoint somewhere the registry does not manage.
		if localPath == "." || (!filepath.IsAbs(localPath) && strings.HasPrefix(localPath, "..")) {
			return nil, domain.ErrInvalidLocalPath
		}
	}
	if labels == nil {
		labels = make(map[string]string)
	}

	now := time.Now()
	cp := &domain.Checkpoint{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		RepoID:    repoID,
		Revision:  revision,
		LocalPath: localPath,
		Status:    domain.CheckpointStatusPending,
		Labels:    labels,
	}

	if err := s.repo.Create(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *CheckpointService) Get(ctx context.Context, id uuid.UUID) (*domain.Checkpoint, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CheckpointService) GetByParams(ctx context.Context, name, repoID string) (*domain.Checkpoint, error) {
	return s.repo.GetByParams(ctx, name, repoID)
}

func (s *CheckpointService) List(ctx context.Context, filter ports.CheckpointListFilter) ([]*domain.Checkpoint, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

func (s *CheckpointService) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Checkpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok := updates["name"]; ok && v != nil {
		name := v.(string)
		if name == "" {
			return nil, domain.ErrInvalidCheckpointName
		}
		cp.Name = name
	}
	if v, ok := updates["revision"]; ok && v != nil {
		cp.Revision = v.(string)
	}
	if v, ok := updates["labels"]; ok && v != nil {
		cp.Labels = v.(map[string]string)
	}

	if err := s.repo.Update(ctx, cp); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes the registry row and the materialized directory. Refused
// while a snapshot job is active so a running download never writes into a
// path the registry no longer owns.
func (s *CheckpointService) Delete(ctx context.Context, id uuid.UUID) error {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if active, err := s.jobRepo.ActiveForCheckpoint(ctx, id); err == nil && active != nil {
		return domain.ErrCheckpointSyncing
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.store.Remove(cp.LocalPath)
}

// Files lists the materialized contents of a READY checkpoint directory.
func (s *CheckpointService) Files(ctx context.Context, id uuid.UUID) ([]domain.CheckpointFile, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cp.Status != domain.CheckpointStatusReady {
		return nil, domain.ErrCheckpointNotReady
	}
	return s.store.ListFiles(cp.LocalPath)
}
