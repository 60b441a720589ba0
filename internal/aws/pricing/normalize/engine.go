// Package normalize reconciles the SKU and offer oriented RDS catalog into one
// record per instance type.
package normalize

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"rdsinfo/internal/aws/pricing/catalog"
	pricingconfig "rdsinfo/internal/aws/pricing/config"
	"rdsinfo/internal/aws/pricing/instancetype"
	"rdsinfo/internal/aws/pricing/models"
	"rdsinfo/internal/logging"
)

const (
	// SingleAZ is the only deployment option priced by this record shape
	SingleAZ = "Single-AZ"

	// DefaultRegion receives SKUs whose location is "Any"
	DefaultRegion = "us-east-1"
)

// Engine codes of non-billable placeholder SKUs
var placeholderEngineCodes = map[string]bool{
	"210": true,
	"220": true,
}

// Dimension descriptions containing any of these describe billing components
// that are not instance hours.
var excludedDescriptions = []string{
	"transfer",
	"global",
	"storage",
	"iops",
	"requests",
	"multi-az",
}

// RegionResolver maps catalog location strings to region ids
type RegionResolver interface {
	Resolve(location string) (string, bool)
}

// Option configures an Engine
type Option func(*Engine)

// WithDefaultRegion overrides the region used for the "Any" location
func WithDefaultRegion(region string) Option {
	return func(e *Engine) {
		if region != "" {
			e.defaultRegion = region
		}
	}
}

// WithOneYearAllUpfront enables amortization of 1yr all-upfront terms
func WithOneYearAllUpfront(enabled bool) Option {
	return func(e *Engine) {
		e.amortizer.OneYearAllUpfront = enabled
	}
}

// Engine runs the normalization over one catalog
type Engine struct {
	regions       RegionResolver
	defaultRegion string
	amortizer     Amortizer
}

// New creates an Engine
func New(regions RegionResolver, opts ...Option) *Engine {
	e := &Engine{
		regions:       regions,
		defaultRegion: DefaultRegion,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// admittedSku is what later steps need to know about a surviving SKU
type admittedSku struct {
	instanceType     string
	region           string
	engineCode       string
	engineName       string
	deploymentOption string
}

// run holds the working set of one Run call
type run struct {
	engine   *Engine
	report   *Report
	skus     map[string]admittedSku
	builders map[string]*Builder
}

// Run normalizes a catalog. Records are returned sorted by instance type.
func (e *Engine) Run(c *catalog.Catalog) ([]*models.InstanceTypeRecord, *Report) {
	r := &run{
		engine:   e,
		report:   &Report{Products: len(c.Products)},
		skus:     make(map[string]admittedSku),
		builders: make(map[string]*Builder),
	}

	for _, p := range c.Products {
		r.admit(p)
	}
	for _, d := range c.OnDemand {
		r.onDemand(d)
	}
	for _, d := range c.Reserved {
		r.reserved(d)
	}

	return r.finish(), r.report
}

// admit applies the admission rules to one product and creates the record
// for its instance type if this is the first surviving SKU.
func (r *run) admit(p catalog.Product) {
	attrs := p.Attributes
	instanceType := instancetype.Sanitize(attrs["instanceType"])

	if attrs["deploymentOption"] != SingleAZ {
		r.report.MultiAZ++
		logging.Debug("Ignoring non single-AZ SKU", map[string]interface{}{
			"sku":               p.SKU,
			"instance_type":     instanceType,
			"deployment_option": attrs["deploymentOption"],
		})
		return
	}

	location := attrs["location"]
	region, ok := r.engine.regions.Resolve(location)
	if !ok {
		if pricingconfig.CanonicalizeLocation(location) != pricingconfig.AnyLocation {
			r.report.UnknownLocation++
			logging.SkuSkipped(p.SKU, instanceType, "no region data for location", map[string]interface{}{
				"location": location,
			})
			return
		}
		region = r.engine.defaultRegion
	}

	code, ok := attrs["engineCode"]
	if !ok || code == "" {
		r.report.MissingEngineCode++
		logging.SkuSkipped(p.SKU, instanceType, "no engine code", nil)
		return
	}
	if placeholderEngineCodes[code] {
		r.report.PlaceholderEngineCode++
		return
	}

	r.skus[p.SKU] = admittedSku{
		instanceType:     instanceType,
		region:           region,
		engineCode:       code,
		engineName:       attrs["databaseEngine"],
		deploymentOption: attrs["deploymentOption"],
	}
	r.report.Admitted++

	if _, exists := r.builders[instanceType]; !exists {
		r.builders[instanceType] = NewBuilder(instanceType, attrs)
	}
}

func excludedDimension(description string) bool {
	lower := strings.ToLower(description)
	for _, term := range excludedDescriptions {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (r *run) onDemand(d catalog.Dimension) {
	if excludedDimension(d.Description) {
		r.report.ExcludedDimensions++
		return
	}

	sku, ok := r.skus[d.SKU]
	if !ok {
		r.report.UnknownSKU++
		return
	}

	price, ok := r.parsePrice(d)
	if !ok {
		return
	}

	r.builders[sku.instanceType].SetOnDemand(sku.region, sku.engineCode, sku.engineName, price)
}

func (r *run) reserved(d catalog.Dimension) {
	sku, ok := r.skus[d.SKU]
	if !ok {
		r.report.UnknownSKU++
		return
	}
	if sku.deploymentOption != SingleAZ {
		return
	}

	component, ok := ReservedComponent(d.LeaseContractLength, d.PurchaseOption, d.Unit)
	if !ok {
		r.report.UnknownTerm++
		logging.Warn("Ignoring reserved offer with unknown term", map[string]interface{}{
			"sku":             d.SKU,
			"instance_type":   sku.instanceType,
			"lease":           d.LeaseContractLength,
			"purchase_option": d.PurchaseOption,
		})
		return
	}

	price, ok := r.parsePrice(d)
	if !ok {
		return
	}

	r.builders[sku.instanceType].AddReservedComponent(sku.region, sku.engineCode, sku.engineName, component, price)
}

func (r *run) parsePrice(d catalog.Dimension) (decimal.Decimal, bool) {
	price, err := decimal.NewFromString(strings.TrimSpace(d.USD))
	if err != nil {
		r.report.InvalidPrice++
		logging.Warn("Ignoring price dimension with invalid USD price", map[string]interface{}{
			"sku":       d.SKU,
			"rate_code": d.RateCode,
			"usd":       d.USD,
		})
		return decimal.Decimal{}, false
	}
	return price, true
}

func (r *run) finish() []*models.InstanceTypeRecord {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)

	records := make([]*models.InstanceTypeRecord, 0, len(types))
	for _, t := range types {
		onFailure := func(region, code string, err error) {
			r.report.AmortizationFailures++
			logging.Error("Trouble generating RDS reserved price", err, map[string]interface{}{
				"instance_type": t,
				"region":        region,
				"engine_code":   code,
			})
		}
		onFlag := func(region, code string) {
			r.report.OneYearAllUpfrontFlagged++
		}
		records = append(records, r.builders[t].Finish(r.engine.amortizer, onFailure, onFlag))
	}

	r.report.Records = len(records)
	if r.report.OneYearAllUpfrontFlagged > 0 {
		logging.Warn("1yr All Upfront reserved prices present but not amortized", map[string]interface{}{
			"groups": r.report.OneYearAllUpfrontFlagged,
			"hint":   "set pricing.amortize_1yr_all_upfront to include them",
		})
	}
	return records
}
