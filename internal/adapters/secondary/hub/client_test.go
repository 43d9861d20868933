package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

const testRepo = "ByteDance-Seed/BAGEL-7B-MoT"

// fakeHub serves a minimal HuggingFace-style API for one repository.
type fakeHub struct {
	files        map[string][]byte
	rangeHits    atomic.Int64
	resolveHits  atomic.Int64
	infoResponse map[string]interface{}
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		files: map[string][]byte{
			"llm_config.json": []byte(`{"hidden_size": 3584}`),
			"ae.safetensors":  []byte("safetensors-bytes-standing-in-for-weights"),
		},
		infoResponse: map[string]interface{}{
			"sha":          "0fd1cf4e0c5dbd5e8da65a2a8335c2c08d8e25a2",
			"lastModified": "2025-05-23T08:00:00.000Z",
			"siblings": []map[string]string{
				{"rfilename": "llm_config.json"},
				{"rfilename": "ae.safetensors"},
			},
		},
	}
}

func (f *fakeHub) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/"+testRepo+"/revision/main", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.infoResponse)
	})
	mux.HandleFunc("/api/models/"+testRepo+"/tree/main", func(w http.ResponseWriter, r *http.Request) {
		entries := []map[string]interface{}{
			{"type": "file", "oid": "1111", "size": len(f.files["llm_config.json"]), "path": "llm_config.json"},
			{
				"type": "file", "oid": "2222", "size": 134, "path": "ae.safetensors",
				"lfs": map[string]interface{}{
					"oid":  sha256Hex(f.files["ae.safetensors"]),
					"size": len(f.files["ae.safetensors"]),
				},
			},
			{"type": "directory", "oid": "3333", "size": 0, "path": "assets"},
		}
		json.NewEncoder(w).Encode(entries)
	})
	mux.HandleFunc("/"+testRepo+"/resolve/main/", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(r.URL.Path)
		content, ok := f.files[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.resolveHits.Add(1)

		if rng := r.Header.Get("Range"); rng != "" {
			f.rangeHits.Add(1)
			var offset int64
			fmt.Sscanf(rng, "bytes=%d-", &offset)
			require.LessOrEqual(t, offset, int64(len(content)))
			w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, len(content)-1, len(content)))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(content[offset:])
			return
		}
		w.Write(content)
	})
	return httptest.NewServer(mux)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestClient_RepoInfo(t *testing.T) {
	f := newFakeHub()
	srv := f.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	info, err := c.RepoInfo(context.Background(), testRepo, "main")
	require.NoError(t, err)
	assert.Equal(t, "0fd1cf4e0c5dbd5e8da65a2a8335c2c08d8e25a2", info.SHA)
	assert.Equal(t, []string{"llm_config.json", "ae.safetensors"}, info.Files)
	assert.Equal(t, 2025, info.LastModified.Year())
}

func TestClient_RepoInfo_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	_, err := c.RepoInfo(context.Background(), "nobody/nothing", "main")
	assert.ErrorIs(t, err, domain.ErrRepoNotFound)
}

func TestClient_ListFiles(t *testing.T) {
	f := newFakeHub()
	srv := f.server(t)
	defer srv.Close()

	c := NewClient(srv.URL, "", 5*time.Second)
	files, err := c.ListFiles(context.Background(), testRepo, "main")
	require.NoError(t, err)

	// Directories are dropped.
	require.Len(t, files, 2)
	assert.Equal(t, "llm_config.json", files[0].Path)
	assert.False(t, files[0].LFS)

	assert.Equal(t, "ae.safetensors", files[1].Path)
	assert.True(t, files[1].LFS)
	// LFS size and oid win over the pointer entry's.
	assert.Equal(t, int64(len(f.files["ae.safetensors"])), files[1].Size)
	assert.Equal(t, sha256Hex(f.files["ae.safetensors"]), files[1].OID)
}

func TestClient_DownloadFile(t *testing.T) {
	f := newFakeHub()
	srv := f.server(t)
	defer srv.Close()

	content := f.files["ae.safetensors"]
	file := ports.HubFile{
		Path: "ae.safetensors",
		Size: int64(len(content)),
		LFS:  true,
		OID:  sha256Hex(content),
	}

	dest := t.TempDir()
	var got int64
	c := NewClient(srv.URL, "", 5*time.Second)
	err := c.DownloadFile(context.Background(), testRepo, "main", file, dest, func(d int64) { got += d })
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "ae.safetensors"))
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, file.Size, got)

	_, err = os.Stat(filepath.Join(dest, "ae.safetensors.partial"))
	assert.True(t, os.IsNotExist(err))
}

func TestClient_DownloadFile_Resume(t *testing.T) {
	f := newFakeHub()
	srv := f.server(t)
	defer srv.Close()

	content := f.files["ae.safetensors"]
	file := ports.HubFile{
		Path: "ae.safetensors",
		Size: int64(len(content)),
		LFS:  true,
		OID:  sha256Hex(content),
	}

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "ae.safetensors.partial"), content[:10], 0o644))

	var got int64
	c := NewClient(srv.URL, "", 5*time.Second)
	err := c.DownloadFile(context.Background(), testRepo, "main", file, dest, func(d int64) { got += d })
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "ae.safetensors"))
	require.NoError(t, err)
	assert.Equal(t, content, data)
	// Resumed bytes count toward progress too.
	assert.Equal(t, file.Size, got)
	assert.Equal(t, int64(1), f.rangeHits.Load())
}

func TestClient_DownloadFile_SkipExisting(t *testing.T) {
	f := newFakeHub()
	srv := f.server(t)
	defer srv.Close()

	content := f.files["ae.safetensors"]
	file := ports.HubFile{
		Path: "ae.safetensors",
		Size: int64(len(content)),
		LFS:  true,
		OID:  sha256Hex(content),
	}

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "ae.safetensors"), content, 0o644))

	var got int64
	c := NewClient(srv.URL, "", 5*time.Second)
	err := c.DownloadFile(context.Background(), testRepo, "main", file, dest, func(d int64) { got += d })
	require.NoError(t, err)
	assert.Equal(t, file.Size, got)
	assert.Equal(t, int64(0), f.resolveHits.Load())
}

func TestClient_DownloadFile_ChecksumMismatch(t *testing.T) {
	f := newFakeHub()
	srv := f.server(t)
	defer srv.Close()

	content := f.files["ae.safetensors"]
	file := ports.HubFile{
		Path: "ae.safetensors",
		Size: int64(len(content)),
		LFS:  true,
		OID:  sha256Hex([]byte("something else entirely")),
	}

	dest := t.TempDir()
	c := NewClient(srv.URL, "", 5*time.Second)
	err := c.DownloadFile(context.Background(), testRepo, "main", file, dest, nil)
	assert.ErrorIs(t, err, domain.ErrChecksumMismatch)

	// Corrupt partials are not kept around.
	_, statErr := os.Stat(filepath.Join(dest, "ae.safetensors.partial"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestClient_DownloadFile_SizeMismatch(t *testing.T) {
	f := newFakeHub()
	srv := f.server(t)
	defer srv.Close()

	file := ports.HubFile{Path: "llm_config.json", Size: 9999}

	dest := t.TempDir()
	c := NewClient(srv.URL, "", 5*time.Second)
	err := c.DownloadFile(context.Background(), testRepo, "main", file, dest, nil)
	assert.ErrorIs(t, err, domain.ErrSizeMismatch)
}

func TestClient_DownloadFile_CanceledMidTransfer(t *testing.T) {
	inFlight := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/"+testRepo+"/resolve/main/", func(w http.ResponseWriter, r *http.Request) {
		close(inFlight)
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-inFlight
		cancel()
	}()

	file := ports.HubFile{Path: "ae.safetensors", Size: 134, LFS: true, OID: "cafe"}
	c := NewClient(srv.URL, "", 5*time.Second)
	err := c.DownloadFile(ctx, testRepo, "main", file, t.TempDir(), nil)
	require.Error(t, err)

	// A canceled transfer must stay recognizable as a cancellation, not
	// collapse into a generic hub failure.
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrHubUnavailable)
}
