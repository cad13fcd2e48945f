// Package pricing converts raw model token usage into monetary cost using a
// process-wide rate table loaded at startup.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// DefaultRateKey is the rate table entry used when a model has no entry of
// its own. Production rate tables must always contain it.
const DefaultRateKey = "default"

// Rate holds per-token prices for a model, in dollars per token.
type Rate struct {
	In     float64 `json:"in"`
	Out    float64 `json:"out"`
	Cached float64 `json:"cached,omitempty"`
}

// RateTable maps model names to rates. It is loaded once at startup and
// read-only afterwards, so it may be shared across requests without
// synchronization.
type RateTable map[string]Rate

// Usage measures one model invocation. Token counts must be non-negative;
// callers validate before computing cost.
type Usage struct {
	Model        string
	InputTokens  int64
	OutputTokens int64
	CachedTokens int64
}

// Resolve returns the rate for a model, falling back to the default entry.
// The second return is false when neither the model nor the default entry
// exists; the zero Rate it returns then yields zero cost.
func (t RateTable) Resolve(model string) (Rate, bool) {
	if r, ok := t[model]; ok {
		return r, true
	}
	if r, ok := t[DefaultRateKey]; ok {
		return r, true
	}
	return Rate{}, false
}

// Validate checks that the table carries the required default entry. A
// missing default is a configuration gap, not a startup failure: cost
// computation degrades to zero for unknown models.
func (t RateTable) Validate() error {
	if _, ok := t[DefaultRateKey]; !ok {
		return fmt.Errorf("rate table is missing the %q entry", DefaultRateKey)
	}
	return nil
}

// ComputeCostCents converts a usage measurement into integral cents using
// the rate table. Unknown models fall back to the default entry; a table
// with neither yields zero cost rather than an error. The dollar total is
// scaled by 100 and rounded half away from zero. The function is pure and
// total: identical inputs always yield identical non-negative output.
func ComputeCostCents(u Usage, rates RateTable) int64 {
	r, _ := rates.Resolve(u.Model)

	dollars := float64(u.InputTokens)*r.In +
		float64(u.OutputTokens)*r.Out +
		float64(u.CachedTokens)*r.Cached

	return int64(math.Round(dollars * 100))
}

// Load parses a rate table from its JSON representation, a mapping from
// model name to {in, out, cached?} dollar rates.
func Load(data []byte) (RateTable, error) {
	var table RateTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rate table: %w", err)
	}
	return table, nil
}

// LoadFile reads a rate table from a JSON file.
func LoadFile(path string) (RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate table file: %w", err)
	}
	return Load(data)
}

// DefaultRateTable returns the built-in rates used when no table is
// configured.
func DefaultRateTable() RateTable {
	return RateTable{
		"gpt-5":        {In: 0.000002, Out: 0.000006},
		"gpt-5-mini":   {In: 0.000001, Out: 0.000003},
		"gpt-5-nano":   {In: 0.0000002, Out: 0.0000004},
		DefaultRateKey: {In: 0.000002, Out: 0.000006},
	}
}
