package post

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post is a social post normalized across sources, persisted after symbol
// detection and sentiment scoring. A post is written once and never mutated;
// sentiment is fixed at ingestion time even if the scoring model changes later.
type Post struct {
	ID         uuid.UUID `db:"id"`
	Source     string    `db:"source"`
	SourceID   string    `db:"source_id"`
	URL        string    `db:"url"`
	Author     string    `db:"author"`
	CreatedAt  time.Time `db:"created_at"`
	Title      string    `db:"title"`
	Text       string    `db:"text"`
	TextClean  string    `db:"text_clean"`
	Symbols    string    `db:"symbols"` // comma-delimited, canonically sorted
	Sentiment  *float64  `db:"sentiment"`
	IngestedAt time.Time `db:"ingested_at"`
}

// SymbolList returns the detected symbol codes as a slice
func (p *Post) SymbolList() []string {
	return SplitSymbols(p.Symbols)
}

// Mentions reports whether the post's symbol set contains the given code
func (p *Post) Mentions(symbol string) bool {
	for _, s := range p.SymbolList() {
		if s == symbol {
			return true
		}
	}
	return false
}

// JoinSymbols serializes a symbol set into the delimited storage form.
// The result is sorted so re-runs over the same alias configuration
// produce byte-identical rows.
func JoinSymbols(symbols []string) string {
	out := make([]string, len(symbols))
	copy(out, symbols)
	sort.Strings(out)
	return strings.Join(out, ",")
}

// SplitSymbols parses the delimited storage form back into a slice
func SplitSymbols(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
