package domain

import (
	"path"
	"time"

	"github.com/google/uuid"
)

type SnapshotStatus string

const (
	SnapshotStatusPending  SnapshotStatus = "PENDING"
	SnapshotStatusRunning  SnapshotStatus = "RUNNING"
	SnapshotStatusComplete SnapshotStatus = "COMPLETE"
	SnapshotStatusFailed   SnapshotStatus = "FAILED"
	SnapshotStatusCanceled SnapshotStatus = "CANCELED"
)

// DefaultAllowPatterns is the pattern allow-list applied when a snapshot job
// does not specify its own. It covers configuration, weight shards, tokenizer
// code and documentation files of a checkpoint repository.
var DefaultAllowPatterns = []string{"*.json", "*.safetensors", "*.bin", "*.py", "*.md", "*.txt"}

// SnapshotJob tracks one snapshot download of a checkpoint repository.
// Exactly one job per checkpoint may be PENDING or RUNNING at a time.
type SnapshotJob struct {
	ID            uuid.UUID      `json:"id"`
	CheckpointID  uuid.UUID      `json:"checkpoint_id"`
	Status        SnapshotStatus `json:"status"`
	AllowPatterns []string       `json:"allow_patterns"`
	TotalFiles    int            `json:"total_files"`
	DoneFiles     int            `json:"done_files"`
	TotalBytes    int64          `json:"total_bytes"`
	DoneBytes     int64          `json:"done_bytes"`
	Error         string         `json:"error"`
	CreatedAt     time.Time      `json:"created_at"`
	StartedAt     *time.Time     `json:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at"`
}

func (s SnapshotStatus) Terminal() bool {
	return s == SnapshotStatusComplete || s == SnapshotStatusFailed || s == SnapshotStatusCanceled
}

// MatchAllowPatterns reports whether a repository-relative file path matches
// any of the given patterns. Patterns are matched against the base name, so
// "*.json" also matches "config/llm_config.json". An empty pattern list
// matches nothing; callers substitute DefaultAllowPatterns beforehand.
func MatchAllowPatterns(patterns []string, relPath string) bool {
	base := path.Base(relPath)
	for _, p := range patterns {
		if ok, err := path.Match(p, base); err == nil && ok {
			return true
		}
		if ok, err := path.Match(p, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

func ValidateAllowPatterns(patterns []string) error {
	for _, p := range patterns {
		if p == "" {
			return ErrInvalidAllowPattern
		}
		if _, err := path.Match(p, "probe"); err != nil {
			return ErrInvalidAllowPattern
		}
	}
	return nil
}
