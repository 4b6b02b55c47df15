package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NormalizesAliases(t *testing.T) {
	r := New(map[string]Instrument{
		"TSLA": {Name: "Tesla", Aliases: []string{"tsla", " Tesla ", "TSLA", "elon", ""}},
	})

	inst, ok := r.Get("TSLA")
	require.True(t, ok)
	assert.Equal(t, []string{"ELON", "TESLA", "TSLA"}, inst.Aliases)
}

func TestRegistry_SymbolsSorted(t *testing.T) {
	r := New(map[string]Instrument{
		"NVDA": {Name: "NVIDIA", Aliases: []string{"NVDA"}},
		"AAPL": {Name: "Apple", Aliases: []string{"AAPL"}},
		"TSLA": {Name: "Tesla", Aliases: []string{"TSLA"}},
	})

	assert.Equal(t, []string{"AAPL", "NVDA", "TSLA"}, r.Symbols())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_SymbolsReturnsCopy(t *testing.T) {
	r := New(map[string]Instrument{
		"AAPL": {Name: "Apple", Aliases: []string{"AAPL"}},
		"TSLA": {Name: "Tesla", Aliases: []string{"TSLA"}},
	})

	first := r.Symbols()
	first[0] = "ZZZZ"
	assert.Equal(t, []string{"AAPL", "TSLA"}, r.Symbols())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := New(map[string]Instrument{})
	_, ok := r.Get("NOPE")
	assert.False(t, ok)
}

func TestDefault_ContainsCoreSymbols(t *testing.T) {
	r := Default()

	for _, code := range []string{"NVDA", "TSLA", "AAPL", "MSFT", "BTC"} {
		inst, ok := r.Get(code)
		require.True(t, ok, "expected %s in default registry", code)
		assert.NotEmpty(t, inst.Aliases)
		// the symbol code itself is always an alias
		assert.Contains(t, inst.Aliases, code)
	}
}
