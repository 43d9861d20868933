package domain

import "errors"

// ============================================================================
// Checkpoint Registry Errors
// ============================================================================

var (
	ErrCheckpointNotFound     = errors.New("checkpoint not found")
	ErrCheckpointNameConflict = errors.New("checkpoint with this name already exists")
	ErrInvalidCheckpointName  = errors.New("checkpoint name is required")
	ErrInvalidRepoID          = errors.New("repository id must be of the form owner/name")
	ErrInvalidLocalPath       = errors.New("local path is required")
	ErrCheckpointSyncing      = errors.New("cannot modify checkpoint: snapshot in progress")
	ErrCheckpointNotReady     = errors.New("checkpoint is not ready")
)

// ============================================================================
// Snapshot Errors
// ============================================================================

var (
	ErrSnapshotNotFound      = errors.New("snapshot job not found")
	ErrSnapshotRunning       = errors.New("a snapshot job is already running for this checkpoint")
	ErrSnapshotNotRunning    = errors.New("snapshot job is not running")
	ErrInvalidAllowPattern   = errors.New("invalid allow pattern")
	ErrEmptySnapshotPlan     = errors.New("no repository files match the allow patterns")
	ErrChecksumMismatch      = errors.New("downloaded file failed checksum verification")
	ErrSizeMismatch          = errors.New("downloaded file size does not match hub metadata")
)

// ============================================================================
// Hub Errors
// ============================================================================

var (
	ErrRepoNotFound   = errors.New("hub repository not found")
	ErrHubUnavailable = errors.New("hub is unavailable")
	ErrHubForbidden   = errors.New("hub denied access: token required or invalid")
)

// ============================================================================
// Host Install Errors
// ============================================================================

var (
	ErrInstallNotFound      = errors.New("install not found")
	ErrInstallExists        = errors.New("checkpoint is already installed at this host path")
	ErrInvalidInstallMethod = errors.New("install method must be link or copy")
	ErrHostDirNotFound      = errors.New("host plugin directory does not exist")
)
