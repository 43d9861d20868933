package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"checkpoint-registry-service/internal/core/domain"
	"checkpoint-registry-service/internal/core/ports/output"
)

// Client talks to a HuggingFace-style hub over its public HTTP API.
type Client struct {
	apiClient      *http.Client
	transferClient *http.Client
	endpoint       string
	token          string
}

// NewClient builds a hub client. The timeout applies to metadata calls only;
// file transfers can legitimately run for hours and are bounded by their
// context instead.
func NewClient(endpoint, token string, timeout time.Duration) *Client {
	return &Client{
		apiClient:      &http.Client{Timeout: timeout},
		transferClient: &http.Client{},
		endpoint:       endpoint,
		token:          token,
	}
}

// repoInfoResponse mirrors the hub's model info JSON.
type repoInfoResponse struct {
	SHA          string `json:"sha"`
	LastModified string `json:"lastModified"`
	Siblings     []struct {
		Rfilename string `json:"rfilename"`
	} `json:"siblings"`
}

// treeEntry mirrors one entry of the recursive tree listing. For LFS-tracked
// files the nested lfs object carries the sha256 of the content.
type treeEntry struct {
	Type string `json:"type"`
	Oid  string `json:"oid"`
	Size int64  `json:"size"`
	Path string `json:"path"`
	Lfs  *struct {
		Oid  string `json:"oid"`
		Size int64  `json:"size"`
	} `json:"lfs,omitempty"`
}

func (c *Client) RepoInfo(ctx context.Context, repoID, revision string) (*ports.RepoInfo, error) {
	url := fmt.Sprintf("%s/api/models/%s/revision/%s", c.endpoint, repoID, revision)

	var body repoInfoResponse
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, err
	}

	info := &ports.RepoInfo{SHA: body.SHA}
	if t, err := time.Parse(time.RFC3339, body.LastModified); err == nil {
		info.LastModified = t
	}
	for _, s := range body.Siblings {
		info.Files = append(info.Files, s.Rfilename)
	}
	return info, nil
}

func (c *Client) ListFiles(ctx context.Context, repoID, revision string) ([]ports.HubFile, error) {
	url := fmt.Sprintf("%s/api/models/%s/tree/%s?recursive=true", c.endpoint, repoID, revision)

	var entries []treeEntry
	if err := c.getJSON(ctx, url, &entries); err != nil {
		return nil, err
	}

	files := make([]ports.HubFile, 0, len(entries))
	for _, e := range entries {
		if e.Type != "file" {
			continue
		}
		f := ports.HubFile{Path: e.Path, Size: e.Size, OID: e.Oid}
		if e.Lfs != nil {
			f.LFS = true
			f.OID = e.Lfs.Oid
			f.Size = e.Lfs.Size
		}
		files = append(files, f)
	}
	return files, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create hub request: %w", err)
	}
	c.authorize(req)

	log.WithField("url", url).Debug("hub api request")

	resp, err := c.apiClient.Do(req)
	if err != nil {
		// Double-wrap so callers can still detect context cancellation.
		return fmt.Errorf("%w: %w", domain.ErrHubUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusErr(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode hub response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func statusErr(code int) error {
	switch {
	case code == http.StatusOK, code == http.StatusPartialContent:
		return nil
	case code == http.StatusNotFound:
		return domain.ErrRepoNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return domain.ErrHubForbidden
	default:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrHubUnavailable, code)
	}
}
