package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Source supplies raw document bytes for a relative path such as "career_en.yaml".
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// FSSource reads documents from a file system.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource wraps fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// NewDirSource reads documents below dir on the local disk.
func NewDirSource(dir string) *FSSource {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultDir
	}
	return &FSSource{fsys: os.DirFS(dir)}
}

func (s *FSSource) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = cleanPath(name)
	if name == "" {
		return nil, ErrNotFound
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// HTTPSource fetches documents relative to a base URL.
type HTTPSource struct {
	baseURL  string
	http     *http.Client
	maxBytes int64
}

// NewHTTPSource constructs an HTTPSource. A zero timeout defaults to five seconds.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:     &http.Client{Timeout: timeout},
		maxBytes: maxDocumentBytes,
	}
}

func (s *HTTPSource) Read(ctx context.Context, name string) ([]byte, error) {
	name = cleanPath(name)
	if s == nil || s.baseURL == "" || name == "" {
		return nil, ErrNotFound
	}
	endpoint, err := url.JoinPath(s.baseURL, name)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain")
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", endpoint, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", endpoint, ErrTooLarge, s.maxBytes)
	}
	return data, nil
}

// FallbackSource tries the primary source first and falls back to the secondary
// when the primary fails for any reason.
type FallbackSource struct {
	primary   Source
	secondary Source
	logger    *zap.Logger
}

func NewFallbackSource(primary, secondary Source, logger *zap.Logger) *FallbackSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSource{primary: primary, secondary: secondary, logger: logger}
}

func (s *FallbackSource) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.primary.Read(ctx, name)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("remote content unavailable, using local copy", zap.String("path", name), zap.Error(err))
	}
	return s.secondary.Read(ctx, name)
}

const maxDocumentBytes = 4 << 20

// cleanPath rejects absolute and parent-relative names.
func cleanPath(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" || strings.Contains(name, "..") {
		return ""
	}
	return path.Clean(name)
}
