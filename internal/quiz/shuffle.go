package quiz

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidPermutation = errors.New("invalid permutation")

// Permutation maps a shuffled slot to the canonical index of the option shown there.
type Permutation []int

// Canonical returns the canonical index behind a shuffled slot.
func (p Permutation) Canonical(slot int) (int, error) {
	if slot < 0 || slot >= len(p) {
		return 0, fmt.Errorf("%w: slot %d out of range [0,%d)", ErrInvalidSelection, slot, len(p))
	}
	return p[slot], nil
}

// Slot returns the shuffled slot that shows the given canonical index.
func (p Permutation) Slot(canonical int) (int, error) {
	for slot, c := range p {
		if c == canonical {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("%w: canonical index %d not present", ErrInvalidPermutation, canonical)
}

// Validate checks that p is a bijection on [0, len(p)).
func (p Permutation) Validate() error {
	seen := make([]bool, len(p))
	for _, c := range p {
		if c < 0 || c >= len(p) || seen[c] {
			return fmt.Errorf("%w: %v", ErrInvalidPermutation, []int(p))
		}
		seen[c] = true
	}
	return nil
}

// DefaultRandom is the cryptographically strong source used in production.
var DefaultRandom io.Reader = rand.Reader

// Shuffle returns the options in a uniformly random order drawn from src with Fisher-Yates,
// together with the permutation that produced it. The input slice is not modified.
func Shuffle(src io.Reader, options []string) ([]string, Permutation, error) {
	if src == nil {
		src = DefaultRandom
	}

	perm := make(Permutation, len(options))
	for i := range perm {
		perm[i] = i
	}

	for i := len(perm) - 1; i > 0; i-- {
		j, err := randomIndex(src, i+1)
		if err != nil {
			return nil, nil, err
		}
		perm[i], perm[j] = perm[j], perm[i]
	}

	shuffled := make([]string, len(options))
	for slot, c := range perm {
		shuffled[slot] = options[c]
	}

	return shuffled, perm, nil
}

// randomIndex draws a uniform integer in [0, n). Values from the biased tail of the
// uint32 range are rejected so the modulo does not favour small indices.
func randomIndex(src io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("random index bound must be positive, got %d", n)
	}

	bound := uint32(n)
	limit := ^uint32(0) - (^uint32(0) % bound)
	var buf [4]byte
	for {
		if _, err := io.ReadFull(src, buf[:]); err != nil {
			return 0, fmt.Errorf("read random source: %w", err)
		}
		v := binary.BigEndian.Uint32(buf[:])
		if v < limit {
			return int(v % bound), nil
		}
	}
}
