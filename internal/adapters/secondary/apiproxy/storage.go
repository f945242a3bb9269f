// Package apiproxy implements the storage backend against a remote
// registry server's file API, for clients without direct storage access.
package apiproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	ports "github.com/thorrester/cardstore/internal/core/ports/output"
)

type storageBackend struct {
	httpClient *http.Client
	baseURL    string
}

// New returns a StorageBackend proxying blob operations to the registry
// server at baseURL.
func New(baseURL string, timeout time.Duration) (ports.StorageBackend, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("proxy base url is required")
	}
	return &storageBackend{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}, nil
}

func (b *storageBackend) fileURL(remotePath string) string {
	return fmt.Sprintf("%s/files?path=%s", b.baseURL, url.QueryEscape(remotePath))
}

func (b *storageBackend) Put(ctx context.Context, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.fileURL(remotePath), src)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	log.WithFields(log.Fields{"path": remotePath}).Debug("uploading file via proxy")
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp, remotePath)
}

func (b *storageBackend) Get(ctx context.Context, remotePath, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.fileURL(remotePath), nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", remotePath, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, remotePath); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(localPath), err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		dst.Close()
		return fmt.Errorf("write %s: %w", localPath, err)
	}
	return dst.Close()
}

func (b *storageBackend) Exists(ctx context.Context, remotePath string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, b.fileURL(remotePath), nil)
	if err != nil {
		return false, fmt.Errorf("create exists request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", remotePath, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("check %s: unexpected status %d", remotePath, resp.StatusCode)
	}
}

func (b *storageBackend) List(ctx context.Context, remoteDir string) ([]string, error) {
	listURL := fmt.Sprintf("%s/files/list?dir=%s", b.baseURL, url.QueryEscape(remoteDir))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", remoteDir, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, remoteDir); err != nil {
		return nil, err
	}

	var body struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return body.Files, nil
}

func checkStatus(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("proxy request for %s failed: status %d", path, resp.StatusCode)
}
