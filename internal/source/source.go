// Package source resolves route identifiers to raw probe text.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrNotFound is returned when a route has no data at its source
var ErrNotFound = errors.New("route data not found")

// Source fetches the raw text of one route
type Source interface {
	Fetch(ctx context.Context, routeID string) (string, error)
}

// FileName maps a target to the CSV name the geolocation step writes:
// "8.8.8.8" -> "output_8_8_8_8.csv"
func FileName(routeID string) string {
	return "output_" + strings.ReplaceAll(strings.TrimSpace(routeID), ".", "_") + ".csv"
}

// ReadTargets reads one target per line, skipping blank lines and # comments
func ReadTargets(r io.Reader) ([]string, error) {
	var targets []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read targets: %w", err)
	}
	return targets, nil
}

// ReadTargetsFile is ReadTargets over a file path
func ReadTargetsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open targets file: %w", err)
	}
	defer f.Close()
	return ReadTargets(f)
}

// FileSource reads route files from a directory
type FileSource struct {
	Dir string
}

// NewFileSource creates a file source rooted at dir
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Fetch reads <dir>/output_<id>.csv
func (s *FileSource) Fetch(ctx context.Context, routeID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, FileName(routeID))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// HTTPSource fetches route files from a base URL
type HTTPSource struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPSource creates an HTTP source with a request timeout
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch GETs <base>/output_<id>.csv
func (s *HTTPSource) Fetch(ctx context.Context, routeID string) (string, error) {
	url := s.BaseURL + "/" + FileName(routeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// CachedSource memoizes successful fetches for a TTL
type CachedSource struct {
	next  Source
	cache *gocache.Cache
}

// NewCachedSource wraps next with a TTL cache
func NewCachedSource(next Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Fetch serves from cache or delegates; failures are not cached
func (s *CachedSource) Fetch(ctx context.Context, routeID string) (string, error) {
	if text, found := s.cache.Get(routeID); found {
		return text.(string), nil
	}
	text, err := s.next.Fetch(ctx, routeID)
	if err != nil {
		return "", err
	}
	s.cache.SetDefault(routeID, text)
	return text, nil
}

// Invalidate drops every cached route
func (s *CachedSource) Invalidate() {
	s.cache.Flush()
}
