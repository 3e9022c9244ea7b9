package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/yourusername/clipnest-go/internal/domain"
)

// maxPageSize caps how much of an HTML or JSON response is read into memory
const maxPageSize = 8 << 20

// NewHTTPClient creates the process-wide client shared by platform sources
func NewHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// HTTPFetcher performs upstream requests and classifies their failures
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	chunkSize int
}

// NewHTTPFetcher creates a fetcher on top of a shared client
func NewHTTPFetcher(client *http.Client, userAgent string, chunkSize int) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if chunkSize < 1 {
		chunkSize = 8192
	}
	return &HTTPFetcher{client: client, userAgent: userAgent, chunkSize: chunkSize}
}

// Do sends req and returns the response only for 2xx statuses. Other
// statuses and transport failures are returned as typed errors.
func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	if f.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(req.Context(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, classifyStatus(resp.StatusCode, req.Method+" "+req.URL.Redacted())
	}
	return resp, nil
}

// Get fetches rawURL with the given headers
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.Permanent("invalid upstream request", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return f.Do(req)
}

// ReadBody reads a successful response body up to maxPageSize
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, domain.Transient(fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}

// DownloadTo streams rawURL into path in fixed-size chunks. A partially
// written file is removed on failure.
func (f *HTTPFetcher) DownloadTo(ctx context.Context, rawURL, path string, headers http.Header) error {
	resp, err := f.Get(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return domain.IOFailure("failed to create output file", err)
	}

	buf := make([]byte, f.chunkSize)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		out.Close()
		os.Remove(path)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.Transient(fmt.Errorf("failed to stream media: %w", err))
	}

	if err := out.Close(); err != nil {
		os.Remove(path)
		return domain.IOFailure("failed to write output file", err)
	}
	return nil
}

// classifyStatus maps an upstream HTTP status to a failure class
func classifyStatus(status int, target string) error {
	err := fmt.Errorf("%s: unexpected status %d", target, status)
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return domain.NotFound("Content not found", err)
	case status == http.StatusTooManyRequests || status == http.StatusRequestTimeout:
		return domain.Transient(err)
	case status >= 500:
		return domain.Transient(err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.Permanent("Invalid or inaccessible post (possibly private or deleted)", err)
	case status >= 400:
		return domain.Permanent("Upstream rejected the request", err)
	default:
		return domain.Unknown(err)
	}
}

// classifyTransportError maps a client error to a failure class. Caller
// cancellation is passed through untouched so it is never retried.
func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.Transient(err)
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return domain.Transient(err)
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return domain.Transient(err)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return domain.Transient(err)
	}
	return domain.Unknown(err)
}
