package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "shorter than cap", text: "abc", max: 5, want: "abc"},
		{name: "cut ascii", text: "abcdef", max: 3, want: "abc"},
		{name: "cut multibyte", text: "héllo", max: 2, want: "hé"},
		{name: "no cap", text: "abc", max: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.text, tt.max))
		})
	}
}

func TestFirstLines(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, FirstLines("one\n\n  two  \nthree", 2))
	assert.Empty(t, FirstLines("", 3))
	assert.Nil(t, FirstLines("a", 0))
}

func TestCollapseBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", CollapseBlankLines("\n  a \n\n\n\n b\n\n"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("  short ", 10))
	assert.Equal(t, "abc...", Excerpt("abcdef", 3))
}
