package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"checkpoint-registry-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testInstall(checkpointID uuid.UUID) *domain.Install {
	return &domain.Install{
		ID:           uuid.New(),
		CheckpointID: checkpointID,
		HostPath:     "/opt/comfyui/models/bagel/bagel-7b-mot",
		Method:       domain.InstallMethodLink,
		Status:       domain.InstallStatusPresent,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestCreateInstall(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusReady)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)
	m.host.On("Dir").Return("/opt/comfyui/models/bagel")
	m.installs.On("GetByHostPath", mock.Anything, "/opt/comfyui/models/bagel/"+cp.Name).
		Return(nil, domain.ErrInstallNotFound)
	m.host.On("Place", cp.Name, cp.LocalPath, domain.InstallMethodLink).
		Return("/opt/comfyui/models/bagel/"+cp.Name, nil)
	m.installs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Install")).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{"checkpoint_id": cp.ID})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/installs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "/opt/comfyui/models/bagel/"+cp.Name, resp["host_path"])
	assert.Equal(t, string(domain.InstallMethodLink), resp["method"])
}

func TestCreateInstall_NotReady(t *testing.T) {
	m, r := setupRouter()

	cp := testCheckpoint(domain.CheckpointStatusSyncing)
	m.checkpoints.On("GetByID", mock.Anything, cp.ID).Return(cp, nil)

	body, _ := json.Marshal(map[string]interface{}{"checkpoint_id": cp.ID})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/installs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	m.host.AssertNotCalled(t, "Place", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInstall_BadMethod(t *testing.T) {
	_, r := setupRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"checkpoint_id": uuid.New(),
		"method":        "tarball",
	})
	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/installs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListInstalls(t *testing.T) {
	m, r := setupRouter()

	m.installs.On("List", mock.Anything, (*uuid.UUID)(nil)).
		Return([]*domain.Install{testInstall(uuid.New())}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/checkpoint-registry/installs", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(1), resp["total"])
}

func TestVerifyInstall_Broken(t *testing.T) {
	m, r := setupRouter()

	install := testInstall(uuid.New())
	m.installs.On("GetByID", mock.Anything, install.ID).Return(install, nil)
	m.host.On("Verify", install.HostPath).Return(domain.InstallStatusBroken, nil)
	m.installs.On("Update", mock.Anything, install).Return(nil)

	req, _ := http.NewRequest("POST", "/api/v1/checkpoint-registry/installs/"+install.ID.String()+"/verify", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, string(domain.InstallStatusBroken), resp["status"])
}

func TestDeleteInstall(t *testing.T) {
	m, r := setupRouter()

	install := testInstall(uuid.New())
	m.installs.On("GetByID", mock.Anything, install.ID).Return(install, nil)
	m.host.On("Remove", install.HostPath).Return(nil)
	m.installs.On("Delete", mock.Anything, install.ID).Return(nil)

	req, _ := http.NewRequest("DELETE", "/api/v1/checkpoint-registry/installs/"+install.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	m.host.AssertCalled(t, "Remove", install.HostPath)
}
