package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/noah-isme/stage-docs-api/pkg/document"
)

const defaultMaxBytes = 2 << 20

// HTTPLoader fetches assets from a URL, typically a storage bucket.
type HTTPLoader struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPLoader builds a loader. A nil client gets a short default timeout.
func NewHTTPLoader(client *http.Client, maxBytes int64) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &HTTPLoader{client: client, maxBytes: maxBytes}
}

func (l *HTTPLoader) Load(ctx context.Context, ref string) (*document.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch asset %s: status %d", ref, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read asset: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("asset %s exceeds %d bytes", ref, l.maxBytes)
	}
	return Normalize(path.Base(req.URL.Path), data)
}
