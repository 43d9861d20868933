package hostdir

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

// Store places checkpoints under the host application's plugin model
// directory (e.g. ComfyUI's models/bagel). The host discovers entries there
// at its next startup; this service only manages the filesystem side.
type Store struct {
	dir string
}

func NewStore(dir string) ports.HostStore {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Place(name, localPath string, method domain.InstallMethod) (string, error) {
	if fi, err := os.Stat(s.dir); err != nil || !fi.IsDir() {
		return "", domain.ErrHostDirNotFound
	}

	hostPath := filepath.Join(s.dir, name)
	if _, err := os.Lstat(hostPath); err == nil {
		return "", domain.ErrInstallExists
	}

	switch method {
	case domain.InstallMethodCopy:
		if err := copyTree(localPath, hostPath); err != nil {
			return "", fmt.Errorf("copy checkpoint into host dir: %w", err)
		}
	default:
		if err := os.Symlink(localPath, hostPath); err != nil {
			return "", fmt.Errorf("link checkpoint into host dir: %w", err)
		}
	}
	return hostPath, nil
}

func (s *Store) Remove(hostPath string) error {
	fi, err := os.Lstat(hostPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat host path: %w", err)
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(hostPath); err != nil {
			return fmt.Errorf("remove host link: %w", err)
		}
		return nil
	}
	if err := os.RemoveAll(hostPath); err != nil {
		return fmt.Errorf("remove host copy: %w", err)
	}
	return nil
}

// Verify reports whether the installed entry is still usable. A symlink whose
// target vanished counts as broken, as does a missing entry.
func (s *Store) Verify(hostPath string) (domain.InstallStatus, error) {
	fi, err := os.Lstat(hostPath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.InstallStatusBroken, nil
		}
		return "", fmt.Errorf("stat host path: %w", err)
	}

	if fi.Mode()&os.ModeSymlink != 0 {
		if _, err := os.Stat(hostPath); err != nil {
			return domain.InstallStatusBroken, nil
		}
	}
	return domain.InstallStatusPresent, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		in, err := os.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
