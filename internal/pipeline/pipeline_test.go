package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rdsinfo/internal/aws/pricing/capacity"
	"rdsinfo/internal/aws/pricing/catalog"
	pricingconfig "rdsinfo/internal/aws/pricing/config"
	"rdsinfo/internal/output"
	"rdsinfo/internal/source"
)

func capacityServer(t *testing.T) *httptest.Server {
	t.Helper()
	page, err := os.ReadFile(filepath.Join("testdata", "ebs-optimized.html"))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(page)
	}))
	t.Cleanup(server.Close)
	return server
}

func testOptions(t *testing.T, capacityURL, outPath string) Options {
	return Options{
		Catalog:  source.File(filepath.Join("testdata", "catalog.json")),
		Capacity: source.HTTP(source.NewClient(5*time.Second), capacityURL, source.WithProgress(nil)),
		Regions:  pricingconfig.NewLocations(),
		Writer:   output.NewWriter(output.Config{Type: output.FileSystem, Path: outPath}),
	}
}

func TestRun(t *testing.T) {
	server := capacityServer(t)
	outPath := filepath.Join(t.TempDir(), "www", "rds", "instances.json")

	result, err := Run(context.Background(), testOptions(t, server.URL, outPath))
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Capacity.DefaultMatched)
	assert.Equal(t, 1, result.Capacity.NonDefaultMatched)
	assert.Equal(t, []string{"db.m1.small"}, result.Capacity.NonDefaultUnmatched)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	r4 := records[0]
	assert.Equal(t, "db.r4.large", r4["instance_type"])
	assert.Equal(t, "15.25", r4["memory"])
	assert.Equal(t, "R4 Memory Optimized Large", r4["pretty_name"])
	assert.Equal(t, true, r4["ebs_optimized"])
	assert.Equal(t, true, r4["ebs_optimized_by_default"])
	assert.Equal(t, 425.0, r4["ebs_baseline_bandwidth"])
	assert.Equal(t, 425.0, r4["ebs_max_bandwidth"])

	pricing := r4["pricing"].(map[string]interface{})["us-east-1"].(map[string]interface{})
	assert.Equal(t, pricing["14"], pricing["PostgreSQL"])
	pg := pricing["14"].(map[string]interface{})
	assert.Equal(t, 0.29, pg["ondemand"])
	reserved := pg["reserved"].(map[string]interface{})
	assert.Equal(t, 0.13708, reserved["yrTerm3Standard.partialUpfront"])

	micro := records[1]
	assert.Equal(t, "db.t2.micro", micro["instance_type"])
	assert.Equal(t, false, micro["ebs_optimized"])
	assert.Equal(t, false, micro["ebs_optimized_by_default"])
	assert.Equal(t, 0.0, micro["ebs_iops"])

	assert.Contains(t, string(data), `"ondemand": 0.29000`)
}

func TestRunIsIdempotent(t *testing.T) {
	server := capacityServer(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	_, err := Run(context.Background(), testOptions(t, server.URL, first))
	require.NoError(t, err)
	_, err = Run(context.Background(), testOptions(t, server.URL, second))
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunCapacityFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()
	outPath := filepath.Join(t.TempDir(), "instances.json")

	_, err := Run(context.Background(), testOptions(t, server.URL, outPath))
	require.Error(t, err)
	assert.True(t, errors.Is(err, source.ErrUnexpectedStatus))
	assert.NoFileExists(t, outPath)
}

func TestRunCapacityLayoutChanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="table-contents"><table></table></div></body></html>`))
	}))
	defer server.Close()
	outPath := filepath.Join(t.TempDir(), "instances.json")

	_, err := Run(context.Background(), testOptions(t, server.URL, outPath))
	require.Error(t, err)
	assert.True(t, errors.Is(err, capacity.ErrUnexpectedLayout))
	assert.NoFileExists(t, outPath)
}

func TestRunMalformedCatalog(t *testing.T) {
	server := capacityServer(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "index.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"products": {}}`), 0644))

	opts := testOptions(t, server.URL, filepath.Join(dir, "instances.json"))
	opts.Catalog = source.File(bad)

	_, err := Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrMalformedCatalog))
}

func TestRunRequiresSources(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "required"))
}
