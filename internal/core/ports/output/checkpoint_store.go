package ports

import (
	"checkpoint-registry-service/internal/core/domain"
)

// CheckpointStore manages checkpoint directories on local disk. Snapshot
// downloads land in a staging directory first; Commit swaps the staging
// directory into place wholesale so a checkpoint path is never half-updated.
type CheckpointStore interface {
	Stage(localPath string) (string, error)
	Commit(stageDir, localPath string) error
	Discard(stageDir string) error
	ListFiles(localPath string) ([]domain.CheckpointFile, error)
	Remove(localPath string) error
}

// HostStore places checkpoints under the host application's plugin model
// directory, where the node-graph host discovers them at startup.
type HostStore interface {
	Place(name, localPath string, method domain.InstallMethod) (string, error)
	Remove(hostPath string) error
	Verify(hostPath string) (domain.InstallStatus, error)
	Dir() string
}
