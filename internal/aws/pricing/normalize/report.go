package normalize

// Report counts what a run admitted and what it dropped
type Report struct {
	Products              int
	Admitted              int
	Records               int
	MultiAZ               int
	UnknownLocation       int
	MissingEngineCode     int
	PlaceholderEngineCode int

	ExcludedDimensions int
	UnknownSKU         int
	InvalidPrice       int
	UnknownTerm        int

	AmortizationFailures     int
	OneYearAllUpfrontFlagged int
}

// Fields returns the report as a logging data bag
func (r *Report) Fields() map[string]interface{} {
	return map[string]interface{}{
		"products":                r.Products,
		"admitted":                r.Admitted,
		"instance_types":          r.Records,
		"multi_az":                r.MultiAZ,
		"unknown_location":        r.UnknownLocation,
		"missing_engine_code":     r.MissingEngineCode,
		"placeholder_engine_code": r.PlaceholderEngineCode,
		"excluded_dimensions":     r.ExcludedDimensions,
		"unknown_sku":             r.UnknownSKU,
		"invalid_price":           r.InvalidPrice,
		"unknown_term":            r.UnknownTerm,
		"amortization_failures":   r.AmortizationFailures,
		"one_year_all_upfront":    r.OneYearAllUpfrontFlagged,
	}
}
