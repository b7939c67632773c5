package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/genricoloni/dancedeck/internal/domain"
	"go.uber.org/zap"
)

const _chunkSize = 32 * 1024

// ErrTooLarge is returned when a resource exceeds the configured size cap
var ErrTooLarge = errors.New("resource exceeds size limit")

// HTTPFetcher streams resource data from HTTP/HTTPS URLs
type HTTPFetcher struct {
	logger  *zap.Logger
	client  *http.Client
	maxSize int64
}

// NewHTTPFetcher creates a new HTTP-based fetcher instance
func NewHTTPFetcher(logger *zap.Logger, cfg domain.Config) *HTTPFetcher {
	return &HTTPFetcher{
		logger: logger,
		client: &http.Client{
			Timeout: cfg.GetFetchTimeout(),
		},
		maxSize: cfg.GetMaxResourceSize(),
	}
}

// Fetch streams the body at url into dst.
// progress receives the running byte count and Content-Length (-1 if unknown).
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, dst io.Writer, progress domain.ProgressFunc) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "dancedeck/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if f.maxSize > 0 && total > f.maxSize {
		return 0, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, total, f.maxSize)
	}

	// Read one byte past the cap so oversized bodies without Content-Length are detected
	var body io.Reader = resp.Body
	if f.maxSize > 0 {
		body = io.LimitReader(resp.Body, f.maxSize+1)
	}

	var written int64
	buf := make([]byte, _chunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if f.maxSize > 0 && written+int64(n) > f.maxSize {
				return written, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxSize)
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("failed to write body: %w", werr)
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, fmt.Errorf("failed to read body: %w", rerr)
		}
	}

	f.logger.Debug("Resource fetched successfully", zap.Int64("bytes", written), zap.String("url", url))
	return written, nil
}
