package rangeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSingleBoundedRange(t *testing.T) {
	set := Parse("bytes=6-11")
	assert.Equal(t, Set{{Lo: 6, Hi: 12}}, set)
}

func TestParseOpenRange(t *testing.T) {
	set := Parse("bytes=6-")
	assert.Equal(t, Set{{Lo: 6, Hi: Unbounded}}, set)
	assert.True(t, set[0].Open())
}

func TestParseTailRange(t *testing.T) {
	set := Parse("bytes=-7")
	assert.Equal(t, Set{{Lo: -7, Tail: true}}, set)
}

func TestParseMultipleRanges(t *testing.T) {
	set := Parse("bytes=6-11,19-23")
	assert.Equal(t, Set{{Lo: 6, Hi: 12}, {Lo: 19, Hi: 24}}, set)
}

func TestParseWithoutBytesPrefix(t *testing.T) {
	set := Parse("6-11")
	assert.Equal(t, Set{{Lo: 6, Hi: 12}}, set)
}

func TestParseEmptyIsNil(t *testing.T) {
	assert.Nil(t, Parse(""))
}

func TestParseMalformedIsNil(t *testing.T) {
	cases := []string{
		"bytes=100-50",
		"bytes=abc-def",
		"bytes=",
		"bytes=--",
		"garbage",
	}
	for _, c := range cases {
		assert.Nil(t, Parse(c), "expected nil for %q", c)
	}
}

func TestParseTailCombinedWithOtherRangeIsRejected(t *testing.T) {
	assert.Nil(t, Parse("bytes=-7,6-11"))
	assert.Nil(t, Parse("bytes=6-11,-7"))
}

func TestEqual(t *testing.T) {
	a := Parse("bytes=6-11,19-23")
	b := Parse("bytes=6-11,19-23")
	c := Parse("bytes=7-11")
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, nil))
	assert.True(t, Equal(nil, nil))
}
