package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"

	units "github.com/docker/go-units"
	log "github.com/sirupsen/logrus"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

const partialSuffix = ".partial"

// DownloadFile fetches one repository file into destDir. A leftover
// <name>.partial file is resumed with a Range request; the finished file is
// verified (sha256 against the LFS oid, size otherwise) and renamed into
// place atomically. Files already present and verified are skipped.
func (c *Client) DownloadFile(ctx context.Context, repoID, revision string, file ports.HubFile, destDir string, progress ports.ProgressFunc) error {
	dest := filepath.Join(destDir, filepath.FromSlash(file.Path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", file.Path, err)
	}

	if ok, err := c.alreadyComplete(dest, file); err != nil {
		return err
	} else if ok {
		if progress != nil {
			progress(file.Size)
		}
		return nil
	}

	partial := dest + partialSuffix
	offset, hasher, err := resumeState(partial, file)
	if err != nil {
		return err
	}
	if offset > 0 {
		log.WithFields(log.Fields{
			"path":   file.Path,
			"offset": units.BytesSize(float64(offset)),
		}).Debug("resuming partial download")
	}

	url := fmt.Sprintf("%s/%s/resolve/%s/%s", c.endpoint, repoID, revision, file.Path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	c.authorize(req)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := c.transferClient.Do(req)
	if err != nil {
		// Double-wrap so callers can still detect context cancellation.
		return fmt.Errorf("%w: %w", domain.ErrHubUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusErr(resp.StatusCode); err != nil {
		return fmt.Errorf("download %s: %w", file.Path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if resp.StatusCode == http.StatusOK && offset > 0 {
		// Server ignored the Range header; start over.
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		offset = 0
		hasher = sha256.New()
	}

	out, err := os.OpenFile(partial, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open partial file: %w", err)
	}

	if progress != nil && offset > 0 {
		progress(offset)
	}

	var w io.Writer = out
	if hasher != nil {
		w = io.MultiWriter(out, hasher)
	}
	if _, err := io.Copy(w, &progressReader{r: resp.Body, progress: progress}); err != nil {
		out.Close()
		return fmt.Errorf("download %s: %w", file.Path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close partial file: %w", err)
	}

	if err := verify(partial, file, hasher); err != nil {
		// Corrupt partials never resume cleanly; drop it.
		os.Remove(partial)
		return fmt.Errorf("verify %s: %w", file.Path, err)
	}

	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("finalize %s: %w", file.Path, err)
	}
	return nil
}

// alreadyComplete reports whether dest is a fully verified copy of the file.
func (c *Client) alreadyComplete(dest string, file ports.HubFile) (bool, error) {
	fi, err := os.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", dest, err)
	}
	if fi.Size() != file.Size {
		return false, nil
	}
	if !file.LFS || file.OID == "" {
		return true, nil
	}

	sum, err := fileSHA256(dest)
	if err != nil {
		return false, err
	}
	return sum == file.OID, nil
}

// resumeState sizes up an existing partial file and, for LFS files, replays
// its bytes through the hash so verification covers the whole content.
func resumeState(partial string, file ports.HubFile) (int64, hash.Hash, error) {
	var hasher hash.Hash
	if file.LFS && file.OID != "" {
		hasher = sha256.New()
	}

	fi, err := os.Stat(partial)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, hasher, nil
		}
		return 0, nil, fmt.Errorf("stat partial: %w", err)
	}

	if fi.Size() >= file.Size {
		// Oversized leftovers cannot be trusted; restart.
		if err := os.Remove(partial); err != nil {
			return 0, nil, fmt.Errorf("remove stale partial: %w", err)
		}
		return 0, hasher, nil
	}

	if hasher != nil {
		f, err := os.Open(partial)
		if err != nil {
			return 0, nil, fmt.Errorf("open partial: %w", err)
		}
		defer f.Close()
		if _, err := io.Copy(hasher, f); err != nil {
			return 0, nil, fmt.Errorf("hash partial: %w", err)
		}
	}
	return fi.Size(), hasher, nil
}

func verify(path string, file ports.HubFile, hasher hash.Hash) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat downloaded file: %w", err)
	}
	if fi.Size() != file.Size {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrSizeMismatch, fi.Size(), file.Size)
	}
	if hasher != nil {
		if sum := hex.EncodeToString(hasher.Sum(nil)); sum != file.OID {
			return fmt.Errorf("%w: got %s, want %s", domain.ErrChecksumMismatch, sum, file.OID)
		}
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type progressReader struct {
	r        io.Reader
	progress ports.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.progress != nil {
		p.progress(int64(n))
	}
	return n, err
}
