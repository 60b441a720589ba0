package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"rdsinfo/internal/aws/pricing/instancetype"
	"rdsinfo/internal/aws/pricing/models"
)

// Attributes that differ between SKUs of the same instance type. Keeping the
// first SKU's copy would leak one offer's metadata into the shared record.
var perSkuAttributes = []string{
	"databaseEdition",
	"databaseEngine",
	"deploymentOption",
	"engineCode",
	"licenseModel",
	"location",
	"locationType",
	"operation",
	"region",
	"usagetype",
}

type groupKey struct {
	region string
	code   string
}

// Builder assembles one InstanceTypeRecord. Raw reserved components are kept
// aside per (region, engine code) until Finish amortizes them.
type Builder struct {
	record *models.InstanceTypeRecord
	raw    map[groupKey]map[string]decimal.Decimal
	groups []groupKey
}

// NewBuilder creates the record for an instance type from the attributes of
// the first SKU that references it.
func NewBuilder(instanceType string, attrs map[string]string) *Builder {
	kept := make(map[string]string, len(attrs))
	for k, v := range attrs {
		kept[k] = v
	}
	for _, k := range perSkuAttributes {
		delete(kept, k)
	}
	kept["instanceType"] = instanceType

	memory := attrs["memory"]
	if fields := strings.Fields(memory); len(fields) > 0 {
		memory = fields[0]
	}

	return &Builder{
		record: &models.InstanceTypeRecord{
			InstanceType:       instanceType,
			Family:             attrs["instanceFamily"],
			Memory:             memory,
			NetworkPerformance: attrs["networkPerformance"],
			Arch:               attrs["processorArchitecture"],
			Pricing:            models.PricingTable{},
			Attributes:         kept,
		},
		raw: make(map[groupKey]map[string]decimal.Decimal),
	}
}

// InstanceType returns the type the builder owns
func (b *Builder) InstanceType() string {
	return b.record.InstanceType
}

// EnsureEngine returns the pricing entry for (region, engine code), creating
// the region and engine entries on first use and binding the engine name as
// an alias. It is idempotent.
func (b *Builder) EnsureEngine(region, code, name string) *models.EnginePricing {
	return b.record.Pricing.Region(region).Engine(code, name)
}

// SetOnDemand records the on-demand hourly price
func (b *Builder) SetOnDemand(region, code, name string, price decimal.Decimal) {
	ep := b.EnsureEngine(region, code, name)
	amount := models.NewAmount(price)
	ep.OnDemand = &amount
}

// AddReservedComponent stores one raw reserved component such as
// "yrTerm3.partialUpfront-quantity".
func (b *Builder) AddReservedComponent(region, code, name, component string, price decimal.Decimal) {
	b.EnsureEngine(region, code, name)
	key := groupKey{region: region, code: code}
	components, ok := b.raw[key]
	if !ok {
		components = make(map[string]decimal.Decimal)
		b.raw[key] = components
		b.groups = append(b.groups, key)
	}
	components[component] = price
}

// Finish amortizes reserved components, derives the pretty name and returns
// the record. Amortization failures are reported through onFailure and leave
// that group without reserved prices.
func (b *Builder) Finish(a Amortizer, onFailure func(region, code string, err error), onFlag func(region, code string)) *models.InstanceTypeRecord {
	for _, key := range b.groups {
		ep := b.EnsureEngine(key.region, key.code, "")
		result, err := a.Amortize(b.raw[key])
		if err != nil {
			ep.Reserved = nil
			if onFailure != nil {
				onFailure(key.region, key.code, err)
			}
			continue
		}
		if result.SkippedOneYearAllUpfront && onFlag != nil {
			onFlag(key.region, key.code)
		}
		ep.Reserved = result.Prices
	}
	b.raw = nil
	b.groups = nil

	b.record.PrettyName = instancetype.PrettyName(b.record.InstanceType)
	return b.record
}
