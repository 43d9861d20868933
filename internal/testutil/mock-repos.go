package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

// MockCheckpointRepo is a mock of CheckpointRepository.
type MockCheckpointRepo struct {
	mock.Mock
}

func (m *MockCheckpointRepo) Create(ctx context.Context, cp *domain.Checkpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockCheckpointRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Checkpoint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Checkpoint), args.Error(1)
}

func (m *MockCheckpointRepo) GetByParams(ctx context.Context, name string, repoID string) (*domain.Checkpoint, error) {
	args := m.Called(ctx, name, repoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Checkpoint), args.Error(1)
}

func (m *MockCheckpointRepo) Update(ctx context.Context, cp *domain.Checkpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockCheckpointRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCheckpointRepo) List(ctx context.Context, filter ports.CheckpointListFilter) ([]*domain.Checkpoint, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Checkpoint), args.Int(1), args.Error(2)
}

// MockSnapshotJobRepo is a mock of SnapshotJobRepository.
type MockSnapshotJobRepo struct {
	mock.Mock
}

func (m *MockSnapshotJobRepo) Create(ctx context.Context, job *domain.SnapshotJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockSnapshotJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SnapshotJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SnapshotJob), args.Error(1)
}

func (m *MockSnapshotJobRepo) Update(ctx context.Context, job *domain.SnapshotJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockSnapshotJobRepo) List(ctx context.Context, filter ports.SnapshotListFilter) ([]*domain.SnapshotJob, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.SnapshotJob), args.Int(1), args.Error(2)
}

func (m *MockSnapshotJobRepo) ActiveForCheckpoint(ctx context.Context, checkpointID uuid.UUID) (*domain.SnapshotJob, error) {
	args := m.Called(ctx, checkpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SnapshotJob), args.Error(1)
}

// MockInstallRepo is a mock of InstallRepository.
type MockInstallRepo struct {
	mock.Mock
}

func (m *MockInstallRepo) Create(ctx context.Context, install *domain.Install) error {
	args := m.Called(ctx, install)
	return args.Error(0)
}

func (m *MockInstallRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Install, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Install), args.Error(1)
}

func (m *MockInstallRepo) GetByHostPath(ctx context.Context, hostPath string) (*domain.Install, error) {
	args := m.Called(ctx, hostPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Install), args.Error(1)
}

func (m *MockInstallRepo) Update(ctx context.Context, install *domain.Install) error {
	args := m.Called(ctx, install)
	return args.Error(0)
}

func (m *MockInstallRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInstallRepo) List(ctx context.Context, checkpointID *uuid.UUID) ([]*domain.Install, error) {
	args := m.Called(ctx, checkpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Install), args.Error(1)
}

// MockHubClient is a mock of HubClient.
type MockHubClient struct {
	mock.Mock
}

func (m *MockHubClient) RepoInfo(ctx context.Context, repoID, revision string) (*ports.RepoInfo, error) {
	args := m.Called(ctx, repoID, revision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RepoInfo), args.Error(1)
}

func (m *MockHubClient) ListFiles(ctx context.Context, repoID, revision string) ([]ports.HubFile, error) {
	args := m.Called(ctx, repoID, revision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HubFile), args.Error(1)
}

func (m *MockHubClient) DownloadFile(ctx context.Context, repoID, revision string, file ports.HubFile, destDir string, progress ports.ProgressFunc) error {
	args := m.Called(ctx, repoID, revision, file, destDir, progress)
	return args.Error(0)
}

// MockRepoInfoCache is a mock of RepoInfoCache.
type MockRepoInfoCache struct {
	mock.Mock
}

func (m *MockRepoInfoCache) Get(ctx context.Context, repoID, revision string) (*ports.RepoInfo, error) {
	args := m.Called(ctx, repoID, revision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RepoInfo), args.Error(1)
}

func (m *MockRepoInfoCache) Set(ctx context.Context, repoID, revision string, info *ports.RepoInfo) error {
	args := m.Called(ctx, repoID, revision, info)
	return args.Error(0)
}

// MockCheckpointStore is a mock of CheckpointStore.
type MockCheckpointStore struct {
	mock.Mock
}

func (m *MockCheckpointStore) Stage(localPath string) (string, error) {
	args := m.Called(localPath)
	return args.String(0), args.Error(1)
}

func (m *MockCheckpointStore) Commit(stageDir, localPath string) error {
	args := m.Called(stageDir, localPath)
	return args.Error(0)
}

func (m *MockCheckpointStore) Discard(stageDir string) error {
	args := m.Called(stageDir)
	return args.Error(0)
}

func (m *MockCheckpointStore) ListFiles(localPath string) ([]domain.CheckpointFile, error) {
	args := m.Called(localPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CheckpointFile), args.Error(1)
}

func (m *MockCheckpointStore) Remove(localPath string) error {
	args := m.Called(localPath)
	return args.Error(0)
}

// MockHostStore is a mock of HostStore.
type MockHostStore struct {
	mock.Mock
}

func (m *MockHostStore) Place(name, localPath string, method domain.InstallMethod) (string, error) {
	args := m.Called(name, localPath, method)
	return args.String(0), args.Error(1)
}

func (m *MockHostStore) Remove(hostPath string) error {
	args := m.Called(hostPath)
	return args.Error(0)
}

func (m *MockHostStore) Verify(hostPath string) (domain.InstallStatus, error) {
	args := m.Called(hostPath)
	return args.Get(0).(domain.InstallStatus), args.Error(1)
}

func (m *MockHostStore) Dir() string {
	args := m.Called()
	return args.String(0)
}
