// Package dice implements the client-side dice rolling primitives.
//
// Rolls are deterministic with respect to the injected rand source, so tests
// can assert exact outputs for a given seed.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidSpec indicates a roll with a non-positive die count or side count.
var ErrInvalidSpec = errors.New("dice must have positive sides and count")

// Result captures the individual faces and total of one roll.
type Result struct {
	Rolls []int
	Total int
}

// Roll rolls count dice with the given number of sides using rng.
//
// Faces appear in Result.Rolls in roll order and each lies in [1, sides].
// Result.Total is their sum. Given the same rng state, Roll always produces
// the same result.
func Roll(rng *rand.Rand, count, sides int) (Result, error) {
	if count <= 0 || sides <= 0 {
		return Result{}, ErrInvalidSpec
	}

	rolls := make([]int, count)
	total := 0
	for i := range rolls {
		v := rng.Intn(sides) + 1
		rolls[i] = v
		total += v
	}
	return Result{Rolls: rolls, Total: total}, nil
}

// NewSeed generates a high-entropy seed from crypto/rand, suitable for
// initializing the default roll source.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
