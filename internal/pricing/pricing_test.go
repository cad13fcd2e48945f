package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeCostCents(t *testing.T) {
	rates := RateTable{
		"gpt-5":        {In: 0.000002, Out: 0.000006},
		DefaultRateKey: {In: 0.01, Out: 0.02},
	}

	tests := []struct {
		name  string
		usage Usage
		want  int64
	}{
		{
			name:  "known model",
			usage: Usage{Model: "gpt-5", InputTokens: 1_000_000, OutputTokens: 500_000},
			want:  500, // $2 in + $3 out
		},
		{
			name:  "unknown model falls back to default",
			usage: Usage{Model: "never-heard-of-it", InputTokens: 1000, OutputTokens: 500},
			want:  2000, // $10 in + $10 out
		},
		{
			name:  "zero usage",
			usage: Usage{Model: "gpt-5"},
			want:  0,
		},
		{
			name:  "cached tokens without cached rate cost nothing",
			usage: Usage{Model: "gpt-5", CachedTokens: 1_000_000},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ComputeCostCents(tt.usage, rates))
		})
	}
}

func TestComputeCostCentsEmptyTable(t *testing.T) {
	// No model entry and no default: cost degrades to zero, never errors.
	usage := Usage{Model: "gpt-5", InputTokens: 1000, OutputTokens: 500}
	require.Zero(t, ComputeCostCents(usage, RateTable{}))
	require.Zero(t, ComputeCostCents(usage, nil))
}

func TestComputeCostCentsIsPure(t *testing.T) {
	rates := RateTable{DefaultRateKey: {In: 0.0000033, Out: 0.0000077}}
	usage := Usage{Model: "anything", InputTokens: 123457, OutputTokens: 76543}

	first := ComputeCostCents(usage, rates)
	for range 10 {
		require.Equal(t, first, ComputeCostCents(usage, rates))
	}
	require.GreaterOrEqual(t, first, int64(0))
}

func TestComputeCostCentsRoundsHalfAwayFromZero(t *testing.T) {
	// 1 token at $0.000125 -> 0.0125 cents... scale up: 1000 tokens at
	// $0.0000125 = $0.0125 = 1.25 cents -> 1. 3000 tokens = 3.75 cents -> 4.
	rates := RateTable{DefaultRateKey: {In: 0.0000125}}

	require.Equal(t, int64(1), ComputeCostCents(Usage{Model: "m", InputTokens: 1000}, rates))
	require.Equal(t, int64(4), ComputeCostCents(Usage{Model: "m", InputTokens: 3000}, rates))
	// Exactly .5 rounds away from zero.
	require.Equal(t, int64(3), ComputeCostCents(Usage{Model: "m", InputTokens: 2000}, rates))
}

func TestResolve(t *testing.T) {
	rates := RateTable{
		"gpt-5":        {In: 1},
		DefaultRateKey: {In: 2},
	}

	r, ok := rates.Resolve("gpt-5")
	require.True(t, ok)
	require.Equal(t, float64(1), r.In)

	r, ok = rates.Resolve("unknown")
	require.True(t, ok)
	require.Equal(t, float64(2), r.In)

	r, ok = RateTable{}.Resolve("unknown")
	require.False(t, ok)
	require.Zero(t, r.In)
}

func TestValidate(t *testing.T) {
	require.Error(t, RateTable{"gpt-5": {In: 1}}.Validate())
	require.NoError(t, RateTable{DefaultRateKey: {In: 1}}.Validate())
}

func TestLoad(t *testing.T) {
	table, err := Load([]byte(`{
		"gpt-5": {"in": 0.000002, "out": 0.000006},
		"default": {"in": 0.01, "out": 0.02, "cached": 0.005}
	}`))
	require.NoError(t, err)
	require.Len(t, table, 2)
	require.Equal(t, 0.005, table[DefaultRateKey].Cached)

	_, err = Load([]byte(`not json`))
	require.Error(t, err)
}
