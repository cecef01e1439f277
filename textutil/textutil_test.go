package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 1, RuneLen('a'))
	assert.Equal(t, 2, RuneLen([]byte("é")[0]))
	assert.Equal(t, 3, RuneLen([]byte("あ")[0]))
	assert.Equal(t, 4, RuneLen([]byte("🎉")[0]))
	assert.Equal(t, 0, RuneLen(0x80), "continuation byte cannot lead")
}

func TestCompleteBoundary(t *testing.T) {
	full := []byte("héllo")
	assert.Equal(t, len(full), CompleteBoundary(full))

	// Drop the final byte of the two-byte é.
	partial := []byte("hé")[:2]
	assert.Equal(t, 1, CompleteBoundary(partial))

	// A four-byte emoji fed one byte short.
	emoji := []byte("🎉")
	assert.Equal(t, 0, CompleteBoundary(emoji[:3]))
	assert.Equal(t, 4, CompleteBoundary(emoji))

	// Invalid lead bytes drain as single bytes.
	assert.Equal(t, 2, CompleteBoundary([]byte{0x80, 0x80}))
}

func TestRuneStart(t *testing.T) {
	b := []byte("aあb")
	assert.Equal(t, 1, RuneStart(b, 2), "middle of あ rewinds to its lead byte")
	assert.Equal(t, 0, RuneStart(b, 0))
	assert.Equal(t, 4, RuneStart(b, 4))
}

func TestTruncate_Unchanged(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 100))
	assert.Equal(t, "", Truncate("", 10))
	s := strings.Repeat("x", 50)
	assert.Equal(t, s, Truncate(s, 50), "exactly at the bound is unchanged")
}

func TestTruncate_AppendsEllipsis(t *testing.T) {
	s := strings.Repeat("x", 100)
	got := Truncate(s, 20)
	assert.True(t, strings.HasSuffix(got, Ellipsis))
	assert.LessOrEqual(t, len(got), 20)
	assert.Equal(t, strings.Repeat("x", 17)+Ellipsis, got)
}

func TestTruncate_NeverSplitsRune(t *testing.T) {
	s := strings.Repeat("あ", 40) // 3 bytes each
	got := Truncate(s, 20)
	assert.True(t, ValidUTF8([]byte(got)))
	assert.True(t, strings.HasSuffix(got, Ellipsis))
	// 20-3 = 17 byte budget, boundary at 15 (five whole runes).
	assert.Equal(t, strings.Repeat("あ", 5)+Ellipsis, got)
}
