package symbols

import (
	"sort"
	"strings"
)

// Instrument describes one tracked financial instrument and the text aliases
// (ticker, company name, products, executives) that identify it in free text.
type Instrument struct {
	Name      string
	Aliases   []string
	Principal string
}

// Registry is an immutable mapping from symbol code to instrument metadata.
// It is built once at startup and passed to the detector; tests substitute a
// small synthetic set via New.
type Registry struct {
	instruments map[string]Instrument
	codes       []string
}

// New builds a registry from a symbol -> instrument map.
// Aliases are normalized to uppercase.
func New(instruments map[string]Instrument) *Registry {
	m := make(map[string]Instrument, len(instruments))
	codes := make([]string, 0, len(instruments))
	for code, inst := range instruments {
		aliases := make([]string, 0, len(inst.Aliases))
		seen := make(map[string]struct{}, len(inst.Aliases))
		for _, a := range inst.Aliases {
			a = strings.ToUpper(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			aliases = append(aliases, a)
		}
		sort.Strings(aliases)
		m[code] = Instrument{Name: inst.Name, Aliases: aliases, Principal: inst.Principal}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return &Registry{instruments: m, codes: codes}
}

// Symbols returns all tracked symbol codes in sorted order
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// Get returns the instrument for a symbol code
func (r *Registry) Get(code string) (Instrument, bool) {
	inst, ok := r.instruments[code]
	return inst, ok
}

// Len returns the number of tracked symbols
func (r *Registry) Len() int {
	return len(r.codes)
}

// Default returns the production registry. Aliases are expanded over time
// based on what shows up in real posts.
func Default() *Registry {
	return New(map[string]Instrument{
		"NVDA": {Name: "NVIDIA", Aliases: []string{"NVDA", "NVIDIA", "GEFORCE", "RTX", "JENSEN", "HUANG"}, Principal: "Jensen Huang"},
		"AMD":  {Name: "AMD", Aliases: []string{"AMD", "ADVANCED MICRO DEVICES", "RYZEN", "RADEON", "LISA SU"}, Principal: "Lisa Su"},
		"AVGO": {Name: "Broadcom", Aliases: []string{"AVGO", "BROADCOM", "VMWARE"}, Principal: "Hock Tan"},
		"TSLA": {Name: "Tesla", Aliases: []string{"TSLA", "TESLA", "ELON", "MUSK"}, Principal: "Elon Musk"},
		"NFLX": {Name: "Netflix", Aliases: []string{"NFLX", "NETFLIX"}, Principal: "Greg Peters"},
		"AAPL": {Name: "Apple", Aliases: []string{"AAPL", "APPLE", "IPHONE", "TIM COOK"}, Principal: "Tim Cook"},
		"GOOG": {Name: "Alphabet", Aliases: []string{"GOOG", "GOOGL", "ALPHABET", "GOOGLE", "SUNDAR"}, Principal: "Sundar Pichai"},
		"META": {Name: "Meta", Aliases: []string{"META", "FACEBOOK", "INSTAGRAM", "WHATSAPP", "ZUCK"}, Principal: "Mark Zuckerberg"},
		"AMZN": {Name: "Amazon", Aliases: []string{"AMZN", "AMAZON", "AWS", "JASSY"}, Principal: "Andy Jassy"},
		"PLTR": {Name: "Palantir", Aliases: []string{"PLTR", "PALANTIR", "KARP"}, Principal: "Alex Karp"},
		"MSFT": {Name: "Microsoft", Aliases: []string{"MSFT", "MICROSOFT", "AZURE", "SATYA"}, Principal: "Satya Nadella"},
		"OKLO": {Name: "Oklo", Aliases: []string{"OKLO", "OKLO INC"}, Principal: "Jacob DeWitte"},
		"VST":  {Name: "Vistra", Aliases: []string{"VST", "VISTRA"}, Principal: "Jim Burke"},
		"ORCL": {Name: "Oracle", Aliases: []string{"ORCL", "ORACLE", "LARRY ELLISON"}, Principal: "Safra Catz"},
		"BTC":  {Name: "Bitcoin", Aliases: []string{"BTC", "BITCOIN", "IBIT"}},
	})
}
