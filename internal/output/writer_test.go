package output

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdsinfo/internal/aws/pricing/models"
)

func testRecords() []*models.InstanceTypeRecord {
	rec := &models.InstanceTypeRecord{
		InstanceType: "db.t2.micro",
		Family:       "General purpose",
		Memory:       "1",
		PrettyName:   "T2 General Purpose Micro",
		Pricing:      models.PricingTable{},
		Attributes:   map[string]string{"vcpu": "1"},
	}
	ep := rec.Pricing.Region("us-east-1").Engine("2", "MySQL")
	price := models.NewAmount(decimal.RequireFromString("0.017"))
	ep.OnDemand = &price
	return []*models.InstanceTypeRecord{rec}
}

func TestEncode(t *testing.T) {
	data, err := Encode(testRecords())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "[\n {\n  \""), "one space indentation: %q", text[:10])
	assert.Contains(t, text, `"ondemand": 0.01700`)
	assert.Contains(t, text, `"ebs_iops": 0.00000`)
	assert.Contains(t, text, `"vcpu": "1"`)
	assert.Contains(t, text, `"MySQL": {`)

	empty, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestWriteFileSystem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "www", "rds", "instances.json")
	w := NewWriter(Config{Type: FileSystem, Path: path})
	assert.Equal(t, path, w.Destination())

	require.NoError(t, w.Write(context.Background(), testRecords()))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, err := Encode(testRecords())
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(written))
}

func TestNewWriterDefaults(t *testing.T) {
	w := NewWriter(Config{})
	assert.Equal(t, FileSystem, w.config.Type)
	assert.Equal(t, DefaultPath, w.Destination())

	s3w := NewWriter(Config{Type: S3, S3Bucket: "pricing"})
	assert.Equal(t, "s3://pricing/"+DefaultS3Key, s3w.Destination())
}

type fakeUploader struct {
	calls int
	input *s3manager.UploadInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), input, opts...)
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, input *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.calls++
	f.input = input
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	if f.err != nil {
		return nil, f.err
	}
	return &s3manager.UploadOutput{Location: "s3://" + *input.Bucket + "/" + *input.Key}, nil
}

func TestWriteS3(t *testing.T) {
	uploader := &fakeUploader{}
	var progress bytes.Buffer
	w := NewWriter(Config{Type: S3, S3Bucket: "pricing", S3Key: "rds/instances.json.gz", Progress: &progress}, WithUploader(uploader))

	require.NoError(t, w.Write(context.Background(), testRecords()))
	require.Equal(t, 1, uploader.calls)
	assert.Equal(t, "pricing", aws.StringValue(uploader.input.Bucket))
	assert.Equal(t, "rds/instances.json.gz", aws.StringValue(uploader.input.Key))
	assert.Equal(t, "gzip", aws.StringValue(uploader.input.ContentEncoding))

	gz, err := gzip.NewReader(bytes.NewReader(uploader.body))
	require.NoError(t, err)
	plain, err := io.ReadAll(gz)
	require.NoError(t, err)

	expected, err := Encode(testRecords())
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(plain))
}

func TestWriteS3FailureIsNotRetried(t *testing.T) {
	uploader := &fakeUploader{err: errors.New("access denied")}
	w := NewWriter(Config{Type: S3, S3Bucket: "pricing"}, WithUploader(uploader))

	err := w.Write(context.Background(), testRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, 1, uploader.calls)
}

func TestWriteS3RequiresBucket(t *testing.T) {
	uploader := &fakeUploader{}
	w := NewWriter(Config{Type: S3}, WithUploader(uploader))

	err := w.Write(context.Background(), testRecords())
	require.Error(t, err)
	assert.Zero(t, uploader.calls)
}

func TestWriteUnsupportedType(t *testing.T) {
	err := NewWriter(Config{Type: "ftp"}).Write(context.Background(), testRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output type")
}
