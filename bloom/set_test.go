package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/freeze/bloom"
	"github.com/stretchr/testify/assert"
)

func TestURLSet_MayContain(t *testing.T) {
	t.Parallel()

	s := bloom.NewURLSet(100, 0.01)
	assert.False(t, s.MayContain("http://localhost:3000/"))

	s.Add("http://localhost:3000/")

	assert.True(t, s.MayContain("http://localhost:3000/"))
	assert.False(t, s.MayContain("http://localhost:3000/about"))
	assert.Equal(t, uint(1), s.Len())
}

func TestURLSet_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	s := bloom.NewURLSet(500, 0.01)
	for i := range 500 {
		s.Add(fmt.Sprintf("http://localhost:3000/p/%d", i))
	}
	for i := range 500 {
		assert.True(t, s.MayContain(fmt.Sprintf("http://localhost:3000/p/%d", i)))
	}
}

func TestURLSet_ZeroSize(t *testing.T) {
	t.Parallel()

	s := bloom.NewURLSet(0, 0.01)
	s.Add("http://localhost:3000/")

	assert.True(t, s.MayContain("http://localhost:3000/"))
}

func TestURLSet_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	s := bloom.NewURLSet(1000, 0.01)
	assert.Zero(t, s.FalsePositiveRate())

	for i := range 1000 {
		s.Add(fmt.Sprintf("http://localhost:3000/p/%d", i))
	}

	assert.InDelta(t, 0.01, s.FalsePositiveRate(), 0.01)
}
