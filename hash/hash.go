package hash

import (
	"bytes"
	"math/big"
	"math/rand"

	"github.com/ethereum/go-ethereum/common"
)

type (
	// Hash is a unique identifier.
	Hash common.Hash

	// Hashes is a slice of hashes.
	Hashes []Hash
)

var (
	// Zero is an empty hash.
	Zero = Hash{}
)

// FromBytes converts bytes to hash.
// If b is larger than len(h), b will be cropped from the left.
func FromBytes(b []byte) Hash {
	return Hash(common.BytesToHash(b))
}

// HexToHash sets byte representation of s to hash.
// If b is larger than len(h), b will be cropped from the left.
func HexToHash(s string) Hash {
	return Hash(common.HexToHash(s))
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash) Bytes() []byte {
	return (common.Hash)(h).Bytes()
}

// Big converts a hash to a big integer.
func (h Hash) Big() *big.Int {
	return (common.Hash)(h).Big()
}

// Hex converts a hash to a hex string.
func (h Hash) Hex() string {
	return (common.Hash)(h).Hex()
}

// String returns human readable string representation.
func (h Hash) String() string {
	return (common.Hash)(h).String()
}

// SetBytes sets the hash to the value of raw.
// If raw is larger than len(h), raw will be cropped from the left.
func (h *Hash) SetBytes(raw []byte) {
	(*common.Hash)(h).SetBytes(raw)
}

// IsZero returns true if hash is empty.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Compare returns an integer comparing two hashes lexicographically.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// FakeHash generates random fake hash for testing purpose.
func FakeHash(seed ...int64) (h Hash) {
	randRead := rand.Read
	if len(seed) > 0 {
		src := rand.NewSource(seed[0])
		randRead = rand.New(src).Read // nolint:gosec
	}

	_, err := randRead(h[:])
	if err != nil {
		panic(err)
	}
	return
}
