package ports

import (
	"context"
	"time"
)

// RepoInfo is the hub's metadata for one repository revision.
type RepoInfo struct {
	SHA          string    `json:"sha"`
	LastModified time.Time `json:"last_modified"`
	Files        []string  `json:"files"`
}

// HubFile is one entry of a repository tree listing. For LFS-tracked files
// OID carries the sha256 of the content; for regular files it is the git
// blob oid and cannot be used for content verification.
type HubFile struct {
	Path string
	Size int64
	LFS  bool
	OID  string
}

// ProgressFunc receives byte deltas as a file download advances.
type ProgressFunc func(delta int64)

// HubClient talks to a HuggingFace-style model hub.
//
// DownloadFile materializes one repository file under destDir, resuming a
// partial transfer if one is present and verifying the result against the
// hub metadata (sha256 for LFS files, size otherwise).
type HubClient interface {
	RepoInfo(ctx context.Context, repoID, revision string) (*RepoInfo, error)
	ListFiles(ctx context.Context, repoID, revision string) ([]HubFile, error)
	DownloadFile(ctx context.Context, repoID, revision string, file HubFile, destDir string, progress ProgressFunc) error
}

// RepoInfoCache caches hub repository metadata. Implementations are optional;
// services tolerate a nil cache.
type RepoInfoCache interface {
	Get(ctx context.Context, repoID, revision string) (*RepoInfo, error)
	Set(ctx context.Context, repoID, revision string, info *RepoInfo) error
}
