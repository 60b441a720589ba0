package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountMarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{"zero value", Amount{}, "0.00000"},
		{"integer", NewAmount(decimal.NewFromInt(4750)), "4750.00000"},
		{"rounded", NewAmount(decimal.RequireFromString("0.1234567")), "0.12346"},
		{"hourly", AmountFromFloat(0.5), "0.50000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestPricingTableAliases(t *testing.T) {
	table := PricingTable{}
	ep := table.Region("us-east-1").Engine("14", "PostgreSQL")
	od := AmountFromFloat(0.29)
	ep.OnDemand = &od

	// re-ensuring is idempotent and keeps the existing entry
	again := table.Region("us-east-1").Engine("14", "PostgreSQL")
	assert.Same(t, ep, again)

	byCode, ok := table.Lookup("us-east-1", EngineCode("14"))
	require.True(t, ok)
	byName, ok := table.Lookup("us-east-1", EngineName("PostgreSQL"))
	require.True(t, ok)
	assert.Same(t, byCode, byName)

	_, ok = table.Lookup("us-west-2", EngineCode("14"))
	assert.False(t, ok)
	_, ok = table.Lookup("us-east-1", EngineName("MySQL"))
	assert.False(t, ok)
}

func TestPricingTableFirstBindingWins(t *testing.T) {
	table := PricingTable{}
	rp := table.Region("eu-west-1")
	rp.Engine("4", "Oracle")
	rp.Engine("5", "Oracle")

	ep, ok := rp.Resolve(EngineName("Oracle"))
	require.True(t, ok)
	assert.Same(t, rp.Engines["4"], ep)
}

func TestPricingTableMarshalJSON(t *testing.T) {
	table := PricingTable{}
	ep := table.Region("us-east-1").Engine("2", "MySQL")
	od := AmountFromFloat(0.017)
	ep.OnDemand = &od
	ep.Reserved = map[string]Amount{"yrTerm1Standard.noUpfront": AmountFromFloat(0.012)}

	raw, err := json.Marshal(table)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"us-east-1": {
			"2":     {"ondemand": 0.017, "reserved": {"yrTerm1Standard.noUpfront": 0.012}},
			"MySQL": {"ondemand": 0.017, "reserved": {"yrTerm1Standard.noUpfront": 0.012}}
		}
	}`, string(raw))
}

func TestRecordMarshalJSONFlattensAttributes(t *testing.T) {
	rec := &InstanceTypeRecord{
		InstanceType: "db.t2.micro",
		Family:       "General purpose",
		Memory:       "1",
		PrettyName:   "T2 General Purpose Micro",
		Pricing:      PricingTable{},
		Attributes: map[string]string{
			"vcpu":          "1",
			"instance_type": "should not win",
		},
	}

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "db.t2.micro", out["instance_type"])
	assert.Equal(t, "1", out["vcpu"])
	assert.Equal(t, 0.0, out["ebs_iops"])
	assert.Equal(t, false, out["ebs_optimized"])
	assert.Contains(t, string(raw), `"ebs_max_bandwidth":0.00000`)
}
