package rng

import "math/bits"

// uint128 is the state word of the PCG generator in math/rand/v2.
type uint128 struct {
	hi, lo uint64
}

func (a uint128) add(b uint128) uint128 {
	lo, c := bits.Add64(a.lo, b.lo, 0)
	hi, _ := bits.Add64(a.hi, b.hi, c)
	return uint128{hi, lo}
}

func (a uint128) mul(b uint128) uint128 {
	hi, lo := bits.Mul64(a.lo, b.lo)
	hi += a.hi*b.lo + a.lo*b.hi
	return uint128{hi, lo}
}

func (a uint128) isZero() bool { return a.hi == 0 && a.lo == 0 }

func (a uint128) shr1() uint128 {
	return uint128{a.hi >> 1, a.lo>>1 | a.hi<<63}
}

// LCG constants of rand.PCG: state = state*pcgMul + pcgInc (mod 2^128).
var (
	pcgMul = uint128{2549297995355413924, 4865540595714422341}
	pcgInc = uint128{6364136223846793005, 1442695040888963407}
)

// jump advances a PCG state by delta steps in O(log delta) using Brown's
// arbitrary-stride LCG update. The result seeds rand.NewPCG(hi, lo) so that
// its first output equals the (delta+1)-th output of the original state.
func jump(state, delta uint128) uint128 {
	accMul := uint128{0, 1}
	accAdd := uint128{}
	curMul := pcgMul
	curAdd := pcgInc
	for !delta.isZero() {
		if delta.lo&1 == 1 {
			accMul = accMul.mul(curMul)
			accAdd = accAdd.mul(curMul).add(curAdd)
		}
		curAdd = curMul.add(uint128{0, 1}).mul(curAdd)
		curMul = curMul.mul(curMul)
		delta = delta.shr1()
	}
	return accMul.mul(state).add(accAdd)
}

// streamOffset is the distance between consecutive streams: 2^64 draws.
func streamOffset(i Stream) uint128 {
	return uint128{hi: uint64(i)}
}
