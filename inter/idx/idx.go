package idx

import (
	"github.com/Fantom-foundation/clotho-base/common/bigendian"
)

type (
	// Epoch numeration.
	Epoch uint32

	// Round numeration.
	Round uint64

	// Validator is an index of a validator inside the committee of an epoch.
	Validator uint32

	// ValidatorID numeration.
	ValidatorID uint32

	// Commit numeration.
	Commit uint64
)

// Bytes gets the byte representation of the index.
func (e Epoch) Bytes() []byte {
	return bigendian.Uint32ToBytes(uint32(e))
}

// Bytes gets the byte representation of the index.
func (r Round) Bytes() []byte {
	return bigendian.Uint64ToBytes(uint64(r))
}

// Bytes gets the byte representation of the index.
func (v Validator) Bytes() []byte {
	return bigendian.Uint32ToBytes(uint32(v))
}

// Bytes gets the byte representation of the index.
func (v ValidatorID) Bytes() []byte {
	return bigendian.Uint32ToBytes(uint32(v))
}

// Bytes gets the byte representation of the index.
func (c Commit) Bytes() []byte {
	return bigendian.Uint64ToBytes(uint64(c))
}

// BytesToEpoch converts bytes to epoch index.
func BytesToEpoch(b []byte) Epoch {
	return Epoch(bigendian.BytesToUint32(b))
}

// BytesToRound converts bytes to round index.
func BytesToRound(b []byte) Round {
	return Round(bigendian.BytesToUint64(b))
}

// BytesToValidator converts bytes to validator index.
func BytesToValidator(b []byte) Validator {
	return Validator(bigendian.BytesToUint32(b))
}

// BytesToValidatorID converts bytes to validator ID.
func BytesToValidatorID(b []byte) ValidatorID {
	return ValidatorID(bigendian.BytesToUint32(b))
}

// BytesToCommit converts bytes to commit index.
func BytesToCommit(b []byte) Commit {
	return Commit(bigendian.BytesToUint64(b))
}
