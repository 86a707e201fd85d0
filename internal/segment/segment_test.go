// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"empty", "", 3, nil},
		{"exact multiple", "abcdef", 3, []string{"abc", "def"}},
		{"short tail", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"smaller than size", "ab", 5, []string{"ab"}},
		{"non-positive size", "abc", 0, []string{"abc"}},
		{"multibyte runes", "äöüß", 2, []string{"äö", "üß"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.text, tt.size))
		})
	}
}

func TestChunksRestartable(t *testing.T) {
	seq := Chunks("abcdefgh", 3)
	var first, second []string
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"abc", "def", "gh"}, first)
}

func TestChunksEarlyBreak(t *testing.T) {
	var got []string
	for c := range Chunks("abcdefgh", 2) {
		got = append(got, c)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"ab", "cd"}, got)
}

func TestSegmentNoEmptyChunks(t *testing.T) {
	text := strings.Repeat("x", 1234)
	for _, size := range []int{1, 7, 100, 1234, 5000} {
		chunks := Segment(text, size)
		joined := strings.Join(chunks, "")
		assert.Equal(t, text, joined, "size %d", size)
		for i, c := range chunks {
			assert.NotEmpty(t, c)
			if i < len(chunks)-1 {
				assert.Equal(t, size, utf8.RuneCountInString(c))
			}
		}
	}
}

func TestTruncateUnderLimit(t *testing.T) {
	text := strings.Repeat("a", 100)
	got, truncated := Truncate(text, 100)
	assert.False(t, truncated)
	assert.Equal(t, text, got)
}

func TestTruncateKeepsHeadAndTail(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	text := b.String()
	const maxLength = 100

	got, truncated := Truncate(text, maxLength)
	require.True(t, truncated)

	want := text[:60] + text[len(text)-40:]
	assert.Equal(t, want, got)
	assert.Equal(t, maxLength, len(got))
}

func TestTruncateOddLimit(t *testing.T) {
	text := strings.Repeat("0123456789", 10)
	got, truncated := Truncate(text, 15)
	require.True(t, truncated)
	// floor(9.0) + floor(6.0)
	assert.Equal(t, text[:9]+text[len(text)-6:], got)
}

func TestSplitMatchesTruncate(t *testing.T) {
	text := strings.Repeat("0123456789", 10)
	for _, maxLength := range []int{1, 7, 15, 33, 99} {
		head, tail := Split(maxLength)
		got, truncated := Truncate(text, maxLength)
		require.True(t, truncated)
		assert.Equal(t, text[:head]+text[len(text)-tail:], got, "maxLength %d", maxLength)
	}
}

func TestTruncateRunes(t *testing.T) {
	text := strings.Repeat("é", 20)
	got, truncated := Truncate(text, 10)
	require.True(t, truncated)
	assert.Equal(t, 10, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestPlanSections(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   Plan
	}{
		{"short document", 1200, Plan{Size: 500, Bound: 1200}},
		{"exactly covered", 5000, Plan{Size: 500, Bound: 5000}},
		{"enlarged", 12000, Plan{Size: 1200, Bound: 12000}},
		{"capped", 50000, Plan{Size: 2000, Bound: 20000}},
		{"empty", 0, Plan{Size: 500, Bound: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanSections(tt.length, 500, 10, 2000))
		})
	}
}

func TestSectionsBounded(t *testing.T) {
	text := strings.Repeat("y", 50000)
	sections := Sections(text, 500, 10, 2000)
	assert.Len(t, sections, 10)
	for _, s := range sections {
		assert.Equal(t, 2000, len(s))
	}
}
