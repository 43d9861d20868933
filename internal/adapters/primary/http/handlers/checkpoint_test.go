package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/services"
	"checkpoint-registry-service/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type routerMocks struct {
	checkpoints *testutil.MockCheckpointRepo
	jobs        *testutil.MockSnapshotJobRepo
	installs    *testutil.MockInstallRepo
	hub         *testutil.MockHubClient
	store       *testutil.MockCheckpointStore
	host        *testutil.MockHostStore
}

func setupRouter() (*routerMocks, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	m := &routerMocks{
		checkpoints: new(testutil.MockCheckpointRepo),
		jobs:        new(testutil.MockSnapshotJobRepo),
		installs:    new(testutil.MockInstallRepo),
		hub:         new(testutil.MockHubClient),
		store:       new(testutil.MockCheckpointStore),
		host:        new(testutil.MockHostStore),
	}

	checkpointSvc := services.NewCheckpointService(m.checkpoints, m.jobs, m.store, "/tmp/checkpoints")
	snapshotSvc := services.NewSnapshotService(m.checkpoints, m.jobs, m.hub, nil, m.store, 2)
	installSvc := services.NewInstallService(m.installs, m.checkpoints, m.host, "link")

	h := New(checkpointSvc, snapshotSvc, installSvc)
	r := gin.New()
	api := r.Group("/api/v1/checkpoint-registry")
	h.RegisterRoutes(api)

	return m, r
}

func testCheckpoint(status domain.CheckpointStatus) *domain.Checkpoint {
	return &domain.Checkpoint{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Name:      "bagel-7b-mot",
		RepoID:    "ByteDance-Seed/BAGEL-7B-MoT",
		Revision:  "main",
		LocalPath: "/tmp/checkpoints/bagel-7b-mot",
		Status:    status,
		Labels:    map[string]string{},
	}
}

func TestListCheckpoints(t *testing.T) {
	m, r := setupRouter()

	m.checkpoints.On("List", mock.Anything, mock.AnythingOfType("ports.CheckpointListFilter")).
		Return([]*domain.Checkpoint{testCheckpoint(domain.CheckpointStatusReady)}, 1, nil)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints?limit=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(1), resp["total"])
}

func TestGetCheckpoint_InvalidID(t *testing.T) {
	_, r := setupRouter()

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCheckpoint_NotFound(t *testing.T) {
	m, r := setupRouter()

	id := uuid.New()
	m.checkpoints.On("GetByID", mock.Anything, id).Return(nil, domain.ErrCheckpointNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCheckpoint(t *testing.T) {
	m, r := setupRouter()

	m.checkpoints.On("Create", mock.Anything, mock.AnythingOfType("*domain.Checkpoint")).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"name":    "bagel-7b-mot",
		"repo_id": "ByteDance-Seed/BAGEL-7B-MoT",
	})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/checkpoints", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "main", resp["revision"])
	assert.Equal(t, "/tmp/checkpoints/bagel-7b-mot", resp["local_path"])
	assert.Equal(t, string(domain.CheckpointStatusPending), resp["status"])
}

func TestCreateCheckpoint_MissingRepoID(t *testing.T) {
	_, r := setupRouter()

	body, _ := json.Marshal(map[string]interface{}{"name": "bagel"})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/checkpoints", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckpoint_BadRepoID(t *testing.T) {
	_, r := setupRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"name":    "bagel",
		"repo_id": "no-namespace",
	})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/checkpoints", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckpoint_NameConflict(t *testing.T) {
	m, r := setupRouter()

	m.checkpoints.On("Create", mock.Anything, mock.AnythingOfType("*domain.Checkpoint")).
		Return(domain.ErrCheckpointNameConflict)

	body, _ := json.Marshal(map[string]interface{}{
		"name":    "bagel-7b-mot",
		"repo_id": "ByteDance-Seed/BAGEL-7B-MoT",
	})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/checkpoints", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteCheckpoint_WhileSyncing(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusSyncing)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.jobs.On("ActiveForCheckpoint", mock.Anything, cp.ID).
		Return(&domain.SnapshotJob{ID: uuid.New(), CheckpointID: cp.ID, Status: domain.SnapshotStatusRunning}, nil)

	req, _ := http.NewRequest("DELETE", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.checkpoints.AssertNotCalled(t, "Delete", mock.Anything, cp.ID)
}

func TestDeleteCheckpoint(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusReady)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.jobs.On("ActiveForCheckpoint", mock.Anything, cp.ID).Return(nil, nil)
	m.checkpoints.On("Delete", mock.Anything, cp.ID).Return(nil)
	m.store.On("Remove", cp.LocalPath).Return(nil)

	req, _ := http.NewRequest("DELETE", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	m.store.AssertCalled(t, "Remove", cp.LocalPath)
}

func TestListCheckpointFiles_NotReady(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusPending)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String()+"/files", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCheckpointFiles(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusReady)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.store.On("ListFiles", cp.LocalPath).Return([]domain.CheckpointFile{
		{Path: "llm_config.json", SizeBytes: 1024},
		{Path: "ae.safetensors", SizeBytes: 335_000_000},
	}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/checkpoints/"+cp.ID.String()+"/files", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(2), resp["total"])
}
