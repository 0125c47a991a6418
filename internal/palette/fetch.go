package palette

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"tools.zach/dev/colorkit/internal/atomicfile"
	"tools.zach/dev/colorkit/internal/paths"
)

// maxPaletteBytes bounds a downloaded palette.
const maxPaletteBytes = 1 << 20

var (
	httpClient     *retryablehttp.Client
	httpClientOnce sync.Once
)

// getHTTPClient returns the shared retryable HTTP client, initializing it on
// first call.
func getHTTPClient() *retryablehttp.Client {
	httpClientOnce.Do(func() {
		httpClient = retryablehttp.NewClient()
		httpClient.RetryMax = 2
		httpClient.RetryWaitMin = 250 * time.Millisecond
		httpClient.RetryWaitMax = 2 * time.Second
		httpClient.HTTPClient.Timeout = 10 * time.Second
		httpClient.Logger = slogLeveled{}
	})
	return httpClient
}

// slogLeveled adapts the default slog logger to retryablehttp.LeveledLogger.
// Request chatter is demoted to debug so a normal run stays quiet.
type slogLeveled struct{}

func (slogLeveled) Error(msg string, kv ...interface{}) { slog.Warn("http: "+msg, kv...) }
func (slogLeveled) Warn(msg string, kv ...interface{})  { slog.Debug("http: "+msg, kv...) }
func (slogLeveled) Info(msg string, kv ...interface{})  { slog.Debug("http: "+msg, kv...) }
func (slogLeveled) Debug(msg string, kv ...interface{}) { slog.Debug("http: "+msg, kv...) }

// Fetch downloads the palette at url, validates it, and refreshes the on-disk
// copy in cache. When the download or validation fails, the cached copy is
// used instead.
//
// Returns nil with an error when both sources fail. The returned error is
// non-nil, alongside a usable palette, when the data came from the cache.
func Fetch(ctx context.Context, url string, cache paths.Cache) (*Palette, error) {
	p, data, fetchErr := fetchRemote(ctx, url)
	if fetchErr == nil {
		if err := atomicfile.Write(cache.Palette(url), data, 0o644); err != nil {
			slog.Warn("failed to cache palette", "url", url, "error", err)
		}
		return p, nil
	}

	cached, err := os.ReadFile(cache.Palette(url))
	if err != nil {
		return nil, fmt.Errorf("fetch palette: %w (no cached copy: %v)", fetchErr, err)
	}
	p, err = Parse(cached, url)
	if err != nil {
		return nil, fmt.Errorf("fetch palette: %w (cached copy invalid: %v)", fetchErr, err)
	}
	slog.Warn("palette fetch failed, using cached copy", "url", url, "error", fetchErr)
	return p, fmt.Errorf("using cached palette: %w", fetchErr)
}

// fetchRemote performs the GET and parses the body. The raw body is returned
// so the caller can cache exactly what was validated.
func fetchRemote(ctx context.Context, url string) (*Palette, []byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPaletteBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}
	if len(data) > maxPaletteBytes {
		return nil, nil, fmt.Errorf("GET %s: palette larger than %d bytes", url, maxPaletteBytes)
	}
	p, err := Parse(data, url)
	if err != nil {
		return nil, nil, err
	}
	return p, data, nil
}
