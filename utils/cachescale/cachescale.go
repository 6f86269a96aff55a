package cachescale

// Func is a function which scales a cache size.
type Func interface {
	I(int) int
	U(uint) uint
	U32(uint32) uint32
	U64(uint64) uint64
	F(float64) float64
}

type identity struct{}

// Identity doesn't scale the cache size.
var Identity Func = identity{}

func (identity) I(v int) int {
	return v
}

func (identity) U(v uint) uint {
	return v
}

func (identity) U32(v uint32) uint32 {
	return v
}

func (identity) U64(v uint64) uint64 {
	return v
}

func (identity) F(v float64) float64 {
	return v
}

// Ratio scales the cache size by Target/Base.
type Ratio struct {
	Base   uint64
	Target uint64
}

// I scales the int value.
func (r Ratio) I(v int) int {
	return int(r.U64(uint64(v)))
}

// U scales the uint value.
func (r Ratio) U(v uint) uint {
	return uint(r.U64(uint64(v)))
}

// U32 scales the uint32 value.
func (r Ratio) U32(v uint32) uint32 {
	return uint32(r.U64(uint64(v)))
}

// U64 scales the uint64 value.
func (r Ratio) U64(v uint64) uint64 {
	return v * r.Target / r.Base
}

// F scales the float64 value.
func (r Ratio) F(v float64) float64 {
	return v * float64(r.Target) / float64(r.Base)
}
