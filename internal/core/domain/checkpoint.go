package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

type CheckpointStatus string

const (
	CheckpointStatusPending CheckpointStatus = "PENDING"
	CheckpointStatusSyncing CheckpointStatus = "SYNCING"
	CheckpointStatusReady   CheckpointStatus = "READY"
	CheckpointStatusFailed  CheckpointStatus = "FAILED"
)

// repoIDPattern matches hub repository identifiers of the form "owner/name",
// e.g. "ByteDance-Seed/BAGEL-7B-MoT".
var repoIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*/[A-Za-z0-9][A-Za-z0-9._-]*$`)

func ValidateRepoID(repoID string) error {
	if repoID == "" {
		return ErrInvalidRepoID
	}
	if !repoIDPattern.MatchString(repoID) {
		return ErrInvalidRepoID
	}
	return nil
}

// Checkpoint is a named collection of files (configuration metadata, weight
// shards, tokenizer and auxiliary files) identified by a hub repository id and
// materialized into a local directory. The directory is never mutated in
// place: a re-sync stages a fresh copy and swaps it in wholesale.
type Checkpoint struct {
	ID           uuid.UUID         `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Name         string            `json:"name"`
	RepoID       string            `json:"repo_id"`
	Revision     string            `json:"revision"`
	LocalPath    string            `json:"local_path"`
	Status       CheckpointStatus  `json:"status"`
	SizeBytes    int64             `json:"size_bytes"`
	FileCount    int               `json:"file_count"`
	LastSyncedAt *time.Time        `json:"last_synced_at"`
	Labels       map[string]string `json:"labels"`
}

// CheckpointFile describes one file inside a materialized checkpoint
// directory, e.g. llm_config.json or ae.safetensors.
type CheckpointFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}
