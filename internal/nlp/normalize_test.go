package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text untouched", in: "TSLA is up today", want: "TSLA is up today"},
		{name: "strips http url", in: "check http://example.com now", want: "check now"},
		{name: "strips https url", in: "see https://example.com/a?b=c here", want: "see here"},
		{name: "url at end", in: "TSLA to the moon!!! http://example.com", want: "TSLA to the moon!!!"},
		{name: "collapses whitespace", in: "a  b\t\tc\n\nd", want: "a b c d"},
		{name: "trims edges", in: "  hello  ", want: "hello"},
		{name: "only url", in: "https://example.com", want: ""},
		{name: "adjacent urls", in: "http://a.com http://b.com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
