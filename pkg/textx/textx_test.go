package textx_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amplifai/lesson-service/pkg/textx"
)

func TestSanitizeText_StripsControlChars(t *testing.T) {
	t.Parallel()
	in := "hello\x00world\x07 ok\n\tkeep"
	out := textx.SanitizeText(in)
	assert.Equal(t, "helloworld ok\n\tkeep", out)
}

func TestSanitizeText_Trims(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abc", textx.SanitizeText("  abc  "))
	assert.Equal(t, "", textx.SanitizeText(" \t\n "))
}

func TestTruncate_UnderLimitUnchanged(t *testing.T) {
	t.Parallel()
	s := "short text"
	assert.Equal(t, s, textx.Truncate(s, 50))
}

func TestTruncate_OverLimitAppendsMarker(t *testing.T) {
	t.Parallel()
	s := strings.Repeat("a", 100)
	out := textx.Truncate(s, 40)
	assert.True(t, strings.HasSuffix(out, textx.TruncateMarker))
	assert.Equal(t, strings.Repeat("a", 40)+textx.TruncateMarker, out)
}

func TestTruncate_ZeroMaxDisables(t *testing.T) {
	t.Parallel()
	s := strings.Repeat("b", 10)
	assert.Equal(t, s, textx.Truncate(s, 0))
}
