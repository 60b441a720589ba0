package capacity

import (
	"sort"

	"rdsinfo/internal/aws/pricing/instancetype"
	"rdsinfo/internal/aws/pricing/models"
	"rdsinfo/internal/logging"
)

// Report counts how the capacity rows matched the records
type Report struct {
	DefaultMatched      int
	DefaultUnmatched    int
	NonDefaultMatched   int
	NonDefaultUnmatched []string
}

// Fields returns the report as a logging data bag
func (r *Report) Fields() map[string]interface{} {
	return map[string]interface{}{
		"default_matched":       r.DefaultMatched,
		"default_unmatched":     r.DefaultUnmatched,
		"non_default_matched":   r.NonDefaultMatched,
		"non_default_unmatched": len(r.NonDefaultUnmatched),
	}
}

// Key converts a capacity table instance type to the record key space
func Key(instanceType string) string {
	return instancetype.WithPrefix(instancetype.Sanitize(instanceType))
}

// Enrich merges the capacity tables into the records. Every record first has
// its capacity reset to zero so unmatched records still carry all fields.
func Enrich(records []*models.InstanceTypeRecord, tables *Tables) *Report {
	byType := make(map[string]*models.InstanceTypeRecord, len(records))
	for _, rec := range records {
		rec.Capacity = models.Capacity{}
		byType[rec.InstanceType] = rec
	}

	report := &Report{}
	if tables == nil {
		return report
	}

	for _, row := range tables.DefaultOptimized {
		rec, ok := byType[Key(row.InstanceType)]
		if !ok {
			report.DefaultUnmatched++
			continue
		}
		report.DefaultMatched++
		rec.Capacity = models.Capacity{
			EBSBaselineBandwidth:  models.NewAmount(row.BaselineBandwidth),
			EBSBaselineThroughput: models.NewAmount(row.BaselineThroughput),
			EBSBaselineIOPS:       models.NewAmount(row.BaselineIOPS),
			EBSMaxBandwidth:       models.NewAmount(row.MaxBandwidth),
			EBSThroughput:         models.NewAmount(row.MaxThroughput),
			EBSIOPS:               models.NewAmount(row.MaxIOPS),
			EBSOptimized:          true,
			EBSOptimizedByDefault: true,
		}
	}

	for _, row := range tables.NonDefault {
		key := Key(row.InstanceType)
		rec, ok := byType[key]
		if !ok {
			report.NonDefaultUnmatched = append(report.NonDefaultUnmatched, key)
			logging.Warn("Ignoring EBS info for unknown instance type", map[string]interface{}{
				"instance_type": key,
			})
			continue
		}
		report.NonDefaultMatched++
		if !row.MaxBandwidth.IsZero() {
			rec.EBSOptimized = true
		}
		rec.EBSOptimizedByDefault = false
		rec.EBSMaxBandwidth = models.NewAmount(row.MaxBandwidth)
		rec.EBSThroughput = models.NewAmount(row.MaxThroughput)
		rec.EBSIOPS = models.NewAmount(row.MaxIOPS)
	}

	sort.Strings(report.NonDefaultUnmatched)
	return report
}
