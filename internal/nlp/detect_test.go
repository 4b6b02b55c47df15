package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tickerpulse/internal/symbols"
)

func testRegistry() *symbols.Registry {
	return symbols.New(map[string]symbols.Instrument{
		"TSLA": {Name: "Tesla", Aliases: []string{"TSLA", "TESLA", "ELON", "MUSK"}},
		"AMD":  {Name: "AMD", Aliases: []string{"AMD", "RYZEN"}},
		"NVDA": {Name: "NVIDIA", Aliases: []string{"NVDA", "NVIDIA", "JENSEN"}},
		"BRKB": {Name: "Berkshire", Aliases: []string{"BRK.B"}},
	})
}

func TestDetector_Detect(t *testing.T) {
	d := NewDetector(testRegistry())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty text", text: "", want: nil},
		{name: "no mention", text: "the market is quiet today", want: nil},
		{name: "single ticker", text: "TSLA to the moon!!!", want: []string{"TSLA"}},
		{name: "case insensitive", text: "tesla had a great quarter", want: []string{"TSLA"}},
		{name: "alias match", text: "Elon said something again", want: []string{"TSLA"}},
		{name: "multiple symbols sorted", text: "nvidia vs amd benchmarks", want: []string{"AMD", "NVDA"}},
		{name: "duplicate aliases count once", text: "TSLA TSLA tesla musk", want: []string{"TSLA"}},
		{name: "no substring match", text: "AMDUPOLY is not a ticker", want: nil},
		{name: "punctuation boundary", text: "buy $TSLA, sell (AMD).", want: []string{"AMD", "TSLA"}},
		{name: "dotted alias matches literally", text: "holding BRK.B long term", want: []string{"BRKB"}},
		{name: "dot is not a wildcard", text: "holding BRKXB long term", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestDetector_SkipsAliaslessSymbols(t *testing.T) {
	d := NewDetector(symbols.New(map[string]symbols.Instrument{
		"GHOST": {Name: "Ghost", Aliases: nil},
	}))
	assert.Nil(t, d.Detect("GHOST appears in text"))
}
