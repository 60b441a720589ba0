package normalize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rdsinfo/internal/aws/pricing/models"
)

// Raw component units
const (
	unitQuantity = "quantity"
	unitHours    = "hrs"
)

// reservedTerms maps "<lease> <purchase option>" to the raw component prefix
var reservedTerms = map[string]string{
	"3yr Partial Upfront": "yrTerm3.partialUpfront",
	"1yr Partial Upfront": "yrTerm1.partialUpfront",
	"3yr All Upfront":     "yrTerm3.allUpfront",
	"1yr All Upfront":     "yrTerm1.allUpfront",
	"1yr No Upfront":      "yrTerm1.noUpfront",
	"3yr No Upfront":      "yrTerm3.noUpfront",
}

// ReservedComponent builds the raw component key, e.g. "yrTerm3.partialUpfront-quantity".
// ok is false for lease/option combinations outside the six standard terms.
func ReservedComponent(lease, option, unit string) (string, bool) {
	term, ok := reservedTerms[lease+" "+option]
	if !ok {
		return "", false
	}
	return term + "-" + strings.ToLower(unit), true
}

var hoursPerYear = decimal.NewFromInt(365 * 24)

// Amortization is the outcome for one (instance type, region, engine) group
type Amortization struct {
	Prices map[string]models.Amount
	// SkippedOneYearAllUpfront is set when 1yr all-upfront components were
	// present but not converted.
	SkippedOneYearAllUpfront bool
}

// Amortizer turns raw reserved components into effective hourly prices
type Amortizer struct {
	// OneYearAllUpfront also produces yrTerm1Standard.allUpfront
	OneYearAllUpfront bool
}

// Amortize computes the effective hourly price of every term present:
//
//	partial upfront: quantity / (365 * years * 24) + hrs
//	all upfront:     quantity / (365 * years * 24) + hrs (hrs optional)
//	no upfront:      hrs
func (a Amortizer) Amortize(raw map[string]decimal.Decimal) (Amortization, error) {
	out := Amortization{Prices: make(map[string]models.Amount)}

	for _, years := range []int64{1, 3} {
		term := fmt.Sprintf("yrTerm%d", years)
		name := fmt.Sprintf("yrTerm%dStandard", years)

		if q, ok := raw[term+".partialUpfront-"+unitQuantity]; ok {
			h, ok := raw[term+".partialUpfront-"+unitHours]
			if !ok {
				return Amortization{}, fmt.Errorf("%s.partialUpfront has an upfront fee but no hourly rate", term)
			}
			out.Prices[name+".partialUpfront"] = models.NewAmount(spread(q, years).Add(h))
		}

		if q, ok := raw[term+".allUpfront-"+unitQuantity]; ok {
			if years == 1 && !a.OneYearAllUpfront {
				out.SkippedOneYearAllUpfront = true
			} else {
				eff := spread(q, years)
				if h, ok := raw[term+".allUpfront-"+unitHours]; ok {
					eff = eff.Add(h)
				}
				out.Prices[name+".allUpfront"] = models.NewAmount(eff)
			}
		}

		if h, ok := raw[term+".noUpfront-"+unitHours]; ok {
			out.Prices[name+".noUpfront"] = models.NewAmount(h)
		}
	}

	return out, nil
}

// spread converts an upfront fee into an hourly amount over the lease
func spread(upfront decimal.Decimal, years int64) decimal.Decimal {
	return upfront.Div(hoursPerYear.Mul(decimal.NewFromInt(years)))
}
