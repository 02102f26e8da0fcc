// Package loader fetches the published photo list.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"photo-gallery/internal/models"

	"go.uber.org/zap"
)

// CacheBustParam is the query parameter that defeats intermediate caches.
const CacheBustParam = "v"

type Loader struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// New returns a loader for url. No client timeout is set; the request context governs hangs.
func New(url string, logger *zap.Logger) *Loader {
	return &Loader{
		url:        url,
		httpClient: &http.Client{},
		logger:     logger.Named("loader"),
		now:        time.Now,
	}
}

func (l *Loader) URL() string { return l.url }

// Fetch returns the photo list, or an empty list when the resource cannot be
// fetched or decoded. Failures are logged, never returned; there is no retry.
func (l *Loader) Fetch(ctx context.Context) []models.Photo {
	photos, err := l.Get(ctx)
	if err != nil {
		l.logger.Error("Could not fetch gallery data", zap.String("url", l.url), zap.Error(err))
		return []models.Photo{}
	}
	l.logger.Debug("gallery data loaded", zap.Int("count", len(photos)))
	return photos
}

// Get is Fetch without the fallback: failures are returned, not logged.
func (l *Loader) Get(ctx context.Context) ([]models.Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.bustedURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	return Decode(resp.Body)
}

func (l *Loader) bustedURL() string {
	sep := "?"
	if strings.Contains(l.url, "?") {
		sep = "&"
	}
	return l.url + sep + CacheBustParam + "=" + strconv.FormatInt(l.now().UnixMilli(), 10)
}

// Decode reads a JSON array of photo records. A JSON null decodes to an empty list.
func Decode(r io.Reader) ([]models.Photo, error) {
	var photos []models.Photo
	if err := json.NewDecoder(r).Decode(&photos); err != nil {
		return nil, fmt.Errorf("decode gallery data: %w", err)
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	return photos, nil
}
