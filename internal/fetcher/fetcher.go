// Package fetcher downloads post images from the social-network CDN.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotImage is returned when the URL serves something other than an image.
var ErrNotImage = eris.New("response is not an image")

// maxImageBytes caps a single download. Screenshots are rarely above a few MB.
const maxImageBytes = 10 << 20

// Image is a downloaded screenshot with its normalized mime type.
type Image struct {
	Data        []byte
	ContentType string
}

// ImageFetcher downloads images with a shared rate limit so a burst of posts
// does not hammer the CDN.
type ImageFetcher struct {
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

// Option configures the fetcher.
type Option func(*ImageFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *ImageFetcher) {
		f.http = hc
	}
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(l *rate.Limiter) Option {
	return func(f *ImageFetcher) {
		f.limiter = l
	}
}

// New creates an image fetcher.
func New(log *zap.Logger, opts ...Option) *ImageFetcher {
	f := &ImageFetcher{
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		log:     log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the image at url. Non-image responses yield ErrNotImage.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) (*Image, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: build request")
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: download image")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetcher: unexpected status %d for %s", resp.StatusCode, url)
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(ct, "image/") {
		return nil, eris.Wrapf(ErrNotImage, "content-type %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read body")
	}

	f.log.Debug("image downloaded",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.String("content_type", ct))

	return &Image{Data: data, ContentType: normalizeMime(ct)}, nil
}

// normalizeMime strips parameters and falls back to image/jpeg for subtypes
// the vision API does not accept. CDN servers sometimes mislabel images.
func normalizeMime(ct string) string {
	mime := strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
	switch mime {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return mime
	default:
		return "image/jpeg"
	}
}
