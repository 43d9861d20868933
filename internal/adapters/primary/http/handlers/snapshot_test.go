package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestStartSnapshot_AlreadyRunning(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusSyncing)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.jobs.On("ActiveForCheckpoint", mock.Anything, cp.ID).
		Return(&domain.SnapshotJob{ID: uuid.New(), CheckpointID: cp.ID, Status: domain.SnapshotStatusRunning}, nil)

	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String()+"/snapshots", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStartSnapshot_BadPattern(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusReady)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.jobs.On("ActiveForCheckpoint", mock.Anything, cp.ID).Return(nil, nil)

	body, _ := json.Marshal(map[string]interface{}{"allow_patterns": []string{"["}})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String()+"/snapshots", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetSnapshot(t *testing.T) {
	m, r := setupRouter()

	job := &domain.SnapshotJob{
		ID:            uuid.New(),
		CheckpointID:  uuid.New(),
		Status:        domain.SnapshotStatusRunning,
		AllowPatterns: domain.DefaultAllowPatterns,
		TotalFiles:    12,
		DoneFiles:     3,
		CreatedAt:     time.Now(),
	}
	m.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/snapshots/"+job.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, string(domain.SnapshotStatusRunning), resp["status"])
	assert.Equal(t, float64(3), resp["done_files"])
}

func TestCancelSnapshot_NotRunning(t *testing.T) {
	m, r := setupRouter()

	job := &domain.SnapshotJob{ID: uuid.New(), Status: domain.SnapshotStatusComplete, CreatedAt: time.Now()}
	m.jobs.On("GetByID", mock.Anything, job.ID).Return(job, nil)

	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/snapshots/"+job.ID.String()+"/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanSnapshot(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusPending)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.hub.On("ListFiles", mock.Anything, cp.RepoID, cp.Revision).Return([]ports.HubFile{
		{Path: "llm_config.json", Size: 1024},
		{Path: "ae.safetensors", Size: 335_000_000, LFS: true, OID: "deadbeef"},
		{Path: "assets/teaser.webp", Size: 90_000},
	}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String()+"/plan", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// teaser.webp falls outside the default allow patterns
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(2), resp["total_files"])
	assert.Equal(t, float64(335_001_024), resp["total_bytes"])
}

func TestGetRepoInfo(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusPending)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.hub.On("RepoInfo", mock.Anything, cp.RepoID, cp.Revision).Return(&ports.RepoInfo{
		SHA:          "abc123",
		LastModified: time.Now(),
		Files:        []string{"llm_config.json", "ae.safetensors"},
	}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String()+"/repo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "abc123", resp["sha"])
}

func TestGetRepoInfo_HubDown(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusPending)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.hub.On("RepoInfo", mock.Anything, cp.RepoID, cp.Revision).Return(nil, domain.ErrHubUnavailable)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String()+"/repo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
