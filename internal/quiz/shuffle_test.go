package quiz

import (
	"bytes"
	"crypto/rand"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroSource always draws index 0.
func zeroSource() *bytes.Reader {
	return bytes.NewReader(make([]byte, 256))
}

func TestShuffle_IsBijection(t *testing.T) {
	options := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < 200; i++ {
		shuffled, perm, err := Shuffle(rand.Reader, options)
		require.NoError(t, err)
		require.NoError(t, perm.Validate())

		for slot, c := range perm {
			assert.Equal(t, options[c], shuffled[slot])
		}

		sorted := append([]string(nil), shuffled...)
		sort.Strings(sorted)
		assert.Equal(t, options, sorted)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, options, "input must not be modified")
}

func TestShuffle_DeterministicSource(t *testing.T) {
	shuffled, perm, err := Shuffle(zeroSource(), []string{"o0", "o1", "o2", "o3"})
	require.NoError(t, err)
	assert.Equal(t, Permutation{1, 2, 3, 0}, perm)
	assert.Equal(t, []string{"o1", "o2", "o3", "o0"}, shuffled)
}

func TestShuffle_CoversEveryPermutation(t *testing.T) {
	seen := map[string]int{}
	for i := 0; i < 3000; i++ {
		shuffled, _, err := Shuffle(rand.Reader, []string{"a", "b", "c"})
		require.NoError(t, err)
		seen[shuffled[0]+shuffled[1]+shuffled[2]]++
	}
	assert.Len(t, seen, 6)
	for perm, n := range seen {
		assert.Greater(t, n, 300, "permutation %s drawn too rarely", perm)
	}
}

func TestShuffle_SourceFailure(t *testing.T) {
	_, _, err := Shuffle(bytes.NewReader([]byte{1, 2}), []string{"a", "b", "c"})
	require.Error(t, err)
}

func TestRandomIndex_RejectsBiasedTail(t *testing.T) {
	// 0xFFFFFFFF lies in the rejected tail for a bound of 3, so the second draw is used.
	src := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 5})
	idx, err := randomIndex(src, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestPermutation_SlotAndCanonical(t *testing.T) {
	p := Permutation{2, 0, 1}
	c, err := p.Canonical(0)
	require.NoError(t, err)
	assert.Equal(t, 2, c)

	slot, err := p.Slot(2)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)

	_, err = p.Canonical(3)
	assert.True(t, errors.Is(err, ErrInvalidSelection))

	assert.ErrorIs(t, Permutation{0, 0, 1}.Validate(), ErrInvalidPermutation)
}
