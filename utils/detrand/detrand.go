// Package detrand provides deterministic pseudo-random streams whose draws
// are reproducible across implementations, platforms and releases, unlike
// the unspecified sequences of math/rand.
package detrand

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// key is the stream version. Changing it defines a new, incompatible stream,
// so all nodes of a network must run the same version.
var key = [16]byte{'c', 'l', 'o', 't', 'h', 'o', '/', 'r', 'a', 'n', 'd', '/', 'v', '1', 0, 0}

// Source is a deterministic stream of pseudo-random numbers keyed by a seed.
// It is not cryptographically secure and not safe for concurrent use.
type Source struct {
	k0, k1  uint64
	seed    uint64
	counter uint64
}

// New returns a source keyed by the seed.
func New(seed uint64) *Source {
	return &Source{
		k0:   binary.LittleEndian.Uint64(key[:8]),
		k1:   binary.LittleEndian.Uint64(key[8:]),
		seed: seed,
	}
}

// Uint64 returns the next value of the stream.
func (s *Source) Uint64() uint64 {
	var msg [16]byte
	binary.LittleEndian.PutUint64(msg[:8], s.seed)
	binary.LittleEndian.PutUint64(msg[8:], s.counter)
	s.counter++
	return siphash.Hash(s.k0, s.k1, msg[:])
}

// Uint64n returns the next value of the stream, reduced to [0, n).
// The modulo bias is negligible while n is much smaller than 2^64.
func (s *Source) Uint64n(n uint64) uint64 {
	if n == 0 {
		panic("detrand: zero modulus")
	}
	return s.Uint64() % n
}
