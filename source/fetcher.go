package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("github.com/paulhiggs/dvb-i-tools-sub001/source")

// ErrEmptyRef is returned when fetching a Ref that names nothing.
var ErrEmptyRef = errors.New("empty source reference")

// FetchConfig configures a Fetcher.
type FetchConfig struct {
	// Timeout bounds each HTTP request (default 30s).
	Timeout time.Duration
	// RequestsPerSecond throttles HTTP requests. Zero or less means unlimited.
	RequestsPerSecond float64
	// Burst is the number of requests allowed at once (default 1).
	Burst int
	// UserAgent is sent with every HTTP request.
	UserAgent string
	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// Fetcher reads files and throttled HTTP resources. It is safe for
// concurrent use.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewFetcher creates a fetcher. The last config wins.
func NewFetcher(cfg ...FetchConfig) *Fetcher {
	var c FetchConfig
	if len(cfg) > 0 {
		c = cfg[len(cfg)-1]
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.UserAgent == "" {
		c.UserAgent = "dvb-i-validate"
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: c.Timeout}
	}
	limit := rate.Inf
	if c.RequestsPerSecond > 0 {
		limit = rate.Limit(c.RequestsPerSecond)
	}
	return &Fetcher{
		client:    client,
		limiter:   rate.NewLimiter(limit, c.Burst),
		userAgent: c.UserAgent,
	}
}

// Fetch returns the content of ref.
func (f *Fetcher) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "source.Fetcher.Fetch",
		trace.WithAttributes(
			attribute.String("source", ref.String()),
			attribute.Bool("remote", ref.IsRemote()),
		))
	defer span.End()

	var (
		data []byte
		err  error
	)
	switch {
	case ref.IsRemote():
		data, err = f.get(ctx, ref.URL)
	case ref.Path != "":
		data, err = os.ReadFile(ref.Path)
		if err != nil {
			err = fmt.Errorf("failed to read %s: %w", ref.Path, err)
		}
	default:
		err = ErrEmptyRef
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	slog.Debug("[FETCH] loaded source", "source", ref.String(), "bytes", len(data))
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return data, nil
}
