package output

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/schollz/progressbar/v3"

	awsutil "rdsinfo/internal/aws"
	"rdsinfo/internal/aws/pricing/models"
	"rdsinfo/internal/logging"
)

const (
	// DefaultPath is where the filesystem destination writes the records
	DefaultPath = "www/rds/instances.json"

	// DefaultS3Key is the object key used when none is configured
	DefaultS3Key = "rds/instances.json.gz"

	defaultPartSize          = 5 * 1024 * 1024 // 5MB
	defaultConcurrentUploads = 5
)

// UploadConfig holds upload configuration
type UploadConfig struct {
	PartSize        int64
	ConcurrentParts int
}

// Type represents the output type
type Type string

const (
	// FileSystem represents local filesystem output
	FileSystem Type = "filesystem"
	// S3 represents S3 bucket output
	S3 Type = "s3"
)

// Config holds output configuration
type Config struct {
	Type     Type
	Path     string
	S3Bucket string
	S3Region string
	S3Key    string
	Profile  string
	Upload   *UploadConfig

	// Progress receives the upload progress bar. Nil disables it.
	Progress io.Writer
}

// Option configures a Writer
type Option func(*Writer)

// WithUploader replaces the S3 uploader built from the AWS session
func WithUploader(u s3manageriface.UploaderAPI) Option {
	return func(w *Writer) {
		w.uploader = u
	}
}

// Writer writes normalized records to the configured destination
type Writer struct {
	config   Config
	uploader s3manageriface.UploaderAPI
}

// NewWriter creates a new output writer with default settings
func NewWriter(config Config, opts ...Option) *Writer {
	if config.Type == "" {
		config.Type = FileSystem
	}
	if config.Type == FileSystem && config.Path == "" {
		config.Path = DefaultPath
	}
	if config.Type == S3 && config.S3Key == "" {
		config.S3Key = DefaultS3Key
	}
	if config.Upload == nil {
		config.Upload = &UploadConfig{
			PartSize:        defaultPartSize,
			ConcurrentParts: defaultConcurrentUploads,
		}
	}

	w := &Writer{config: config}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Destination describes where Write puts the records
func (w *Writer) Destination() string {
	if w.config.Type == S3 {
		return fmt.Sprintf("s3://%s/%s", w.config.S3Bucket, w.config.S3Key)
	}
	return w.config.Path
}

// Encode renders the records as a JSON array indented with one space
func Encode(records []*models.InstanceTypeRecord) ([]byte, error) {
	if records == nil {
		records = []*models.InstanceTypeRecord{}
	}
	data, err := json.MarshalIndent(records, "", " ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	return data, nil
}

// compressData compresses the input data using gzip
func compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write to gzip writer: %w", err)
	}

	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Write encodes the records and writes them to the configured destination
func (w *Writer) Write(ctx context.Context, records []*models.InstanceTypeRecord) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}

	switch w.config.Type {
	case FileSystem:
		return w.writeToFileSystem(w.config.Path, data)
	case S3:
		compressed, err := compressData(data)
		if err != nil {
			return fmt.Errorf("failed to compress data: %w", err)
		}
		return w.writeToS3(ctx, w.config.S3Key, compressed)
	default:
		return fmt.Errorf("unsupported output type: %s", w.config.Type)
	}
}

// writeToFileSystem writes data to the local filesystem
func (w *Writer) writeToFileSystem(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	logging.Debug("Wrote records file", map[string]interface{}{
		"path":  path,
		"bytes": len(data),
	})
	return nil
}

func (w *Writer) s3Uploader() (s3manageriface.UploaderAPI, error) {
	if w.uploader != nil {
		return w.uploader, nil
	}

	sess, err := awsutil.NewSession(w.config.Profile, w.config.S3Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	w.uploader = s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
		u.PartSize = w.config.Upload.PartSize
		u.Concurrency = w.config.Upload.ConcurrentParts
	})
	return w.uploader, nil
}

// writeToS3 uploads data once with progress tracking. A failure is returned
// to the caller without retrying.
func (w *Writer) writeToS3(ctx context.Context, key string, data []byte) error {
	if w.config.S3Bucket == "" {
		return fmt.Errorf("S3 bucket not specified")
	}

	uploader, err := w.s3Uploader()
	if err != nil {
		return err
	}

	var body io.Reader = bytes.NewReader(data)
	if w.config.Progress != nil {
		body = &progressReader{
			reader: body,
			bar: progressbar.NewOptions64(
				int64(len(data)),
				progressbar.OptionSetWriter(w.config.Progress),
				progressbar.OptionSetDescription("Uploading to S3..."),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(15),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w.config.Progress)
				}),
			),
		}
	}

	_, err = uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:               aws.String(w.config.S3Bucket),
		Key:                  aws.String(key),
		Body:                 body,
		ContentType:          aws.String("application/json"),
		ContentEncoding:      aws.String("gzip"),
		ServerSideEncryption: aws.String("aws:kms"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	logging.Debug("Uploaded records", map[string]interface{}{
		"bucket": w.config.S3Bucket,
		"key":    key,
		"bytes":  len(data),
	})
	return nil
}

// progressReader wraps an io.Reader to track progress
type progressReader struct {
	reader io.Reader
	bar    *progressbar.ProgressBar
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if barErr := r.bar.Add(n); barErr != nil {
		logging.Debug("Error updating progress bar", map[string]interface{}{
			"error": barErr.Error(),
		})
	}
	return n, err
}
