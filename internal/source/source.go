// Package source provides the byte streams the pipeline reads: the pricing
// catalog and the EBS capacity page, either from disk or over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/schollz/progressbar/v3"

	"rdsinfo/internal/logging"
	"rdsinfo/internal/version"
)

const (
	// CatalogURL is the public RDS offer file
	CatalogURL = "https://pricing.us-east-1.amazonaws.com/offers/v1.0/aws/AmazonRDS/current/index.json"

	// CapacityURL is the EBS-optimized instances documentation page
	CapacityURL = "https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/ebs-optimized.html"

	// DefaultTimeout bounds a whole download, body included
	DefaultTimeout = 10 * time.Minute
)

// ErrUnexpectedStatus is returned for non-2xx HTTP responses
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Source opens a document for reading. Callers close the returned reader.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FromLocation returns an HTTP source for http(s) URLs and a file source
// for anything else.
func FromLocation(client *resty.Client, location string, opts ...HTTPOption) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return HTTP(client, location, opts...)
	}
	return File(location)
}

// FileSource reads a local file
type FileSource struct {
	path string
}

// File returns a Source reading path
func File(path string) *FileSource {
	return &FileSource{path: path}
}

// Open opens the file
func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	return f, nil
}

func (s *FileSource) String() string {
	return s.path
}

// NewClient creates the HTTP client used for downloads. Requests are made
// once; a failed fetch aborts the run.
func NewClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "rdsinfo/"+version.ShortString())
}

// HTTPOption configures an HTTPSource
type HTTPOption func(*HTTPSource)

// WithProgress draws a download progress bar on w when the response length
// is known. A nil writer disables the bar.
func WithProgress(w io.Writer) HTTPOption {
	return func(s *HTTPSource) {
		s.progress = w
	}
}

// HTTPSource downloads a URL
type HTTPSource struct {
	client   *resty.Client
	url      string
	progress io.Writer
}

// HTTP returns a Source fetching url with client. The progress bar is drawn
// on stderr unless overridden.
func HTTP(client *resty.Client, url string, opts ...HTTPOption) *HTTPSource {
	if client == nil {
		client = NewClient(DefaultTimeout)
	}
	s := &HTTPSource{
		client:   client,
		url:      url,
		progress: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open issues the GET request and streams the body
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	logging.Debug("Fetching document", map[string]interface{}{
		"url": s.url,
	})

	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		if body != nil {
			body.Close()
		}
		return nil, fmt.Errorf("failed to fetch %s: %w: %d", s.url, ErrUnexpectedStatus, resp.StatusCode())
	}

	var length int64 = -1
	if resp.RawResponse != nil {
		length = resp.RawResponse.ContentLength
	}
	logging.Debug("Fetched document headers", map[string]interface{}{
		"url":            s.url,
		"status":         resp.StatusCode(),
		"content_length": length,
	})

	if s.progress == nil || length <= 0 {
		return body, nil
	}

	return &progressReader{
		ReadCloser: body,
		bar: progressbar.NewOptions64(
			length,
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionSetDescription("Downloading "+s.url),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(15),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(s.progress)
			}),
		),
	}, nil
}

func (s *HTTPSource) String() string {
	return s.url
}

// progressReader advances a progress bar as the body is read
type progressReader struct {
	io.ReadCloser
	bar *progressbar.ProgressBar
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if barErr := r.bar.Add(n); barErr != nil {
		logging.Debug("Error updating progress bar", map[string]interface{}{
			"error": barErr.Error(),
		})
	}
	return n, err
}

func (r *progressReader) Close() error {
	_ = r.bar.Finish()
	return r.ReadCloser.Close()
}
