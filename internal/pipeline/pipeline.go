// Package pipeline wires the catalog reader, the normalization engine and the
// capacity enricher to a writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"rdsinfo/internal/aws/pricing/capacity"
	"rdsinfo/internal/aws/pricing/catalog"
	"rdsinfo/internal/aws/pricing/models"
	"rdsinfo/internal/aws/pricing/normalize"
	"rdsinfo/internal/logging"
	"rdsinfo/internal/source"
)

// Writer persists the final records
type Writer interface {
	Write(ctx context.Context, records []*models.InstanceTypeRecord) error
	Destination() string
}

// Options configures a run
type Options struct {
	Catalog  source.Source
	Capacity source.Source
	Regions  normalize.RegionResolver
	Writer   Writer

	// NumberParser parses capacity figures; capacity.ParseNumber when nil
	NumberParser capacity.NumberParser

	EngineOptions []normalize.Option
}

// Result summarizes a completed run
type Result struct {
	Records  []*models.InstanceTypeRecord
	Pricing  *normalize.Report
	Capacity *capacity.Report
}

func (o Options) validate() error {
	switch {
	case o.Catalog == nil:
		return errors.New("catalog source is required")
	case o.Capacity == nil:
		return errors.New("capacity source is required")
	case o.Regions == nil:
		return errors.New("region resolver is required")
	case o.Writer == nil:
		return errors.New("writer is required")
	}
	return nil
}

// Run reads the catalog, normalizes it, merges the capacity tables and
// writes the records. Any fetch, parse or write failure aborts the run.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	logging.RunStart(opts.Catalog.String(), opts.Capacity.String())

	c, err := readCatalog(ctx, opts.Catalog)
	if err != nil {
		return nil, err
	}
	logging.Info("Read pricing catalog", map[string]interface{}{
		"products":  len(c.Products),
		"on_demand": len(c.OnDemand),
		"reserved":  len(c.Reserved),
	})

	records, pricingReport := normalize.New(opts.Regions, opts.EngineOptions...).Run(c)
	logging.Info("Normalized pricing", pricingReport.Fields())

	tables, err := readCapacity(ctx, opts.Capacity, opts.NumberParser)
	if err != nil {
		return nil, err
	}
	capacityReport := capacity.Enrich(records, tables)
	logging.Info("Merged EBS capacity", capacityReport.Fields())

	if err := opts.Writer.Write(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to write records to %s: %w", opts.Writer.Destination(), err)
	}
	logging.RunComplete(len(records), opts.Writer.Destination())

	return &Result{
		Records:  records,
		Pricing:  pricingReport,
		Capacity: capacityReport,
	}, nil
}

func readCatalog(ctx context.Context, src source.Source) (*catalog.Catalog, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer closeQuietly(rc, src)

	c, err := catalog.Read(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog from %s: %w", src, err)
	}
	return c, nil
}

func readCapacity(ctx context.Context, src source.Source, parse capacity.NumberParser) (*capacity.Tables, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open capacity page: %w", err)
	}
	defer closeQuietly(rc, src)

	tables, err := capacity.ParseTables(rc, parse)
	if err != nil {
		return nil, fmt.Errorf("failed to read capacity tables from %s: %w", src, err)
	}
	return tables, nil
}

func closeQuietly(c io.Closer, src source.Source) {
	if err := c.Close(); err != nil {
		logging.Debug("Error closing source", map[string]interface{}{
			"source": src.String(),
			"error":  err.Error(),
		})
	}
}
