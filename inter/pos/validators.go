package pos

import (
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

type (
	// Weight amount.
	Weight uint64

	cache struct {
		indexes     map[idx.ValidatorID]idx.Validator
		weights     []Weight
		ids         []idx.ValidatorID
		totalWeight Weight
	}

	// Validators of an epoch with weights.
	// The order is deterministic: by weight descending, then by ID ascending.
	// Read-only.
	Validators struct {
		values map[idx.ValidatorID]Weight
		cache  cache
	}

	// ValidatorsBuilder is a helper to create Validators object.
	ValidatorsBuilder map[idx.ValidatorID]Weight

	validator struct {
		ID     idx.ValidatorID
		Weight Weight
	}

	validatorsList []validator

	validatorsRLP struct {
		IDs     []idx.ValidatorID
		Weights []Weight
	}
)

func (vv validatorsList) Len() int {
	return len(vv)
}

func (vv validatorsList) Less(i, j int) bool {
	if vv[i].Weight != vv[j].Weight {
		return vv[i].Weight > vv[j].Weight
	}
	return vv[i].ID < vv[j].ID
}

func (vv validatorsList) Swap(i, j int) {
	vv[i], vv[j] = vv[j], vv[i]
}

// NewBuilder creates new mutable ValidatorsBuilder.
func NewBuilder() ValidatorsBuilder {
	return ValidatorsBuilder{}
}

// Set appends item to ValidatorsBuilder object.
func (vv ValidatorsBuilder) Set(id idx.ValidatorID, weight Weight) {
	if weight == 0 {
		delete(vv, id)
	} else {
		vv[id] = weight
	}
}

// Build new read-only Validators object.
func (vv ValidatorsBuilder) Build() *Validators {
	return newValidators(vv)
}

// ArrayToValidators builds Validators from ordered arrays of IDs and weights.
func ArrayToValidators(ids []idx.ValidatorID, weights []Weight) *Validators {
	builder := NewBuilder()
	for i, id := range ids {
		builder.Set(id, weights[i])
	}
	return builder.Build()
}

// EqualWeightValidators builds Validators of the same weight.
func EqualWeightValidators(ids []idx.ValidatorID, weight Weight) *Validators {
	builder := NewBuilder()
	for _, id := range ids {
		builder.Set(id, weight)
	}
	return builder.Build()
}

func newValidators(values ValidatorsBuilder) *Validators {
	valuesCopy := make(map[idx.ValidatorID]Weight)
	for id, s := range values {
		valuesCopy[id] = s
	}

	vv := &Validators{
		values: valuesCopy,
	}
	vv.cache = vv.calcCaches()
	return vv
}

func (vv *Validators) calcCaches() cache {
	c := cache{
		indexes: make(map[idx.ValidatorID]idx.Validator),
		weights: make([]Weight, vv.Len()),
		ids:     make([]idx.ValidatorID, vv.Len()),
	}

	for i, v := range vv.sortedArray() {
		c.indexes[v.ID] = idx.Validator(i)
		c.weights[i] = v.Weight
		c.ids[i] = v.ID
		c.totalWeight += v.Weight
	}

	return c
}

// sortedArray returns validators sorted by weight desc, then by ID asc.
func (vv *Validators) sortedArray() validatorsList {
	array := make(validatorsList, 0, len(vv.values))
	for id, s := range vv.values {
		array = append(array, validator{
			ID:     id,
			Weight: s,
		})
	}
	sort.Sort(array)
	return array
}

// Get returns weight for validator by ID.
func (vv *Validators) Get(id idx.ValidatorID) Weight {
	return vv.values[id]
}

// GetIdx returns index (offset) of validator in the group.
func (vv *Validators) GetIdx(id idx.ValidatorID) idx.Validator {
	return vv.cache.indexes[id]
}

// GetID returns validator ID by index (offset) of validator in the group.
func (vv *Validators) GetID(i idx.Validator) idx.ValidatorID {
	return vv.cache.ids[i]
}

// GetWeightByIdx returns weight for validator by index.
func (vv *Validators) GetWeightByIdx(i idx.Validator) Weight {
	return vv.cache.weights[i]
}

// Exists returns true if validator ID is in the group.
func (vv *Validators) Exists(id idx.ValidatorID) bool {
	_, ok := vv.values[id]
	return ok
}

// Len returns the count of validators in the group.
func (vv *Validators) Len() idx.Validator {
	return idx.Validator(len(vv.values))
}

// TotalWeight of the group.
func (vv *Validators) TotalWeight() Weight {
	return vv.cache.totalWeight
}

// Quorum limit of the group, more than 2/3 of the total weight.
func (vv *Validators) Quorum() Weight {
	return vv.TotalWeight()*2/3 + 1
}

// SortedIDs returns deterministically sorted IDs.
// The order is the same as the validator indexes.
func (vv *Validators) SortedIDs() []idx.ValidatorID {
	return vv.cache.ids
}

// SortedWeights returns deterministically sorted weights.
// The order is the same as the validator indexes.
func (vv *Validators) SortedWeights() []Weight {
	return vv.cache.weights
}

// Idxs gets deterministic total order of validators.
func (vv *Validators) Idxs() map[idx.ValidatorID]idx.Validator {
	return vv.cache.indexes
}

// Copy constructs a copy.
func (vv *Validators) Copy() *Validators {
	return newValidators(vv.values)
}

// Builder returns a mutable copy of the content.
func (vv *Validators) Builder() ValidatorsBuilder {
	builder := NewBuilder()
	for id, s := range vv.values {
		builder.Set(id, s)
	}
	return builder
}

// String returns human readable representation.
func (vv *Validators) String() string {
	str := ""
	for i, id := range vv.SortedIDs() {
		if i != 0 {
			str += ","
		}
		str += fmt.Sprintf("%d:%d", id, vv.Get(id))
	}
	return "[" + str + "]"
}

// EncodeRLP implements rlp.Encoder interface.
func (vv *Validators) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &validatorsRLP{
		IDs:     vv.cache.ids,
		Weights: vv.cache.weights,
	})
}

// DecodeRLP implements rlp.Decoder interface.
func (vv *Validators) DecodeRLP(s *rlp.Stream) error {
	var decoded validatorsRLP
	if err := s.Decode(&decoded); err != nil {
		return err
	}

	builder := NewBuilder()
	for i, id := range decoded.IDs {
		builder.Set(id, decoded.Weights[i])
	}
	*vv = *builder.Build()

	return nil
}
