package localfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

const stageSuffix = ".staging"

// Store keeps checkpoint directories on local disk. Downloads land in a
// sibling staging directory (<path>.staging) and are swapped into place in
// one rename, so a checkpoint path either holds the previous complete
// snapshot or the new one, never a mix.
type Store struct{}

func NewStore() ports.CheckpointStore {
	return &Store{}
}

func (s *Store) Stage(localPath string) (string, error) {
	stage := localPath + stageSuffix
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	return stage, nil
}

func (s *Store) Commit(stageDir, localPath string) error {
	old := localPath + ".old"
	replaced := false

	if _, err := os.Stat(localPath); err == nil {
		if err := os.Rename(localPath, old); err != nil {
			return fmt.Errorf("move previous snapshot aside: %w", err)
		}
		replaced = true
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", localPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.Rename(stageDir, localPath); err != nil {
		if replaced {
			os.Rename(old, localPath)
		}
		return fmt.Errorf("swap staging dir into place: %w", err)
	}

	if replaced {
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("remove previous snapshot: %w", err)
		}
	}
	return nil
}

func (s *Store) Discard(stageDir string) error {
	if !strings.HasSuffix(stageDir, stageSuffix) {
		return fmt.Errorf("refusing to discard non-staging dir %s", stageDir)
	}
	return os.RemoveAll(stageDir)
}

func (s *Store) ListFiles(localPath string) ([]domain.CheckpointFile, error) {
	files := []domain.CheckpointFile{}
	err := filepath.WalkDir(localPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localPath, p)
		if err != nil {
			return err
		}
		files = append(files, domain.CheckpointFile{
			Path:      filepath.ToSlash(rel),
			SizeBytes: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list checkpoint files: %w", err)
	}
	return files, nil
}

func (s *Store) Remove(localPath string) error {
	if err := os.RemoveAll(localPath); err != nil {
		return fmt.Errorf("remove checkpoint dir: %w", err)
	}
	// Leftover staging from an interrupted snapshot goes with it.
	if err := os.RemoveAll(localPath + stageSuffix); err != nil {
		return fmt.Errorf("remove staging dir: %w", err)
	}
	return nil
}
