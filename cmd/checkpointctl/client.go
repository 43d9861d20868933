package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"checkpoint-registry-service/internal/adapters/primary/http/dto"
)

// client is a thin wrapper over the registry service API. The base URL is a
// pointer so the root command's persistent flag can be bound before commands
// are constructed.
type client struct {
	base *string
	http http.Client
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, *c.base+"/api/v1/checkpoint-registry"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registry service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(resp.StatusCode)
		}
		return &apiError{Status: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) createCheckpoint(ctx context.Context, req dto.CreateCheckpointRequest) (*dto.CheckpointResponse, error) {
	var out dto.CheckpointResponse
	if err := c.do(ctx, http.MethodPost, "/checkpoints", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) checkpointByName(ctx context.Context, name string) (*dto.CheckpointResponse, error) {
	var out dto.CheckpointResponse
	path := "/checkpoint?name=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) listCheckpoints(ctx context.Context) (*dto.ListCheckpointsResponse, error) {
	var out dto.ListCheckpointsResponse
	if err := c.do(ctx, http.MethodGet, "/checkpoints?limit=100", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) deleteCheckpoint(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/checkpoints/"+id, nil, nil)
}

func (c *client) startSnapshot(ctx context.Context, checkpointID string, req dto.StartSnapshotRequest) (*dto.SnapshotJobResponse, error) {
	var out dto.SnapshotJobResponse
	if err := c.do(ctx, http.MethodPost, "/checkpoints/"+checkpointID+"/snapshots", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) snapshot(ctx context.Context, id string) (*dto.SnapshotJobResponse, error) {
	var out dto.SnapshotJobResponse
	if err := c.do(ctx, http.MethodGet, "/snapshots/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) snapshotsFor(ctx context.Context, checkpointID string) (*dto.ListSnapshotJobsResponse, error) {
	var out dto.ListSnapshotJobsResponse
	path := "/snapshots?checkpoint_id=" + url.QueryEscape(checkpointID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) createInstall(ctx context.Context, req dto.CreateInstallRequest) (*dto.InstallResponse, error) {
	var out dto.InstallResponse
	if err := c.do(ctx, http.MethodPost, "/installs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
