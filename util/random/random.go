package random

import (
	crypto_rand "crypto/rand"
	"math/big"
	"math/rand"

	"github.com/db47h/rand64/v3/xoshiro"
)

func NewSeed() int64 {
	const MaxUint = ^uint(0)
	const MaxInt = int(MaxUint >> 1)
	nBig, err := crypto_rand.Int(crypto_rand.Reader, big.NewInt(int64(MaxInt)))
	if err != nil {
		panic("cannot seed math/rand package with cryptographically secure random number generator")
	}

	return nBig.Int64()
}

// NewRand returns a generator over a xoshiro256+ source. A fresh generator is
// created for every deal so no source is shared between goroutines.
func NewRand() *rand.Rand {
	return NewRandWithSeed(NewSeed())
}

func NewRandWithSeed(seed int64) *rand.Rand {
	src := &xoshiro.Rng256P{}
	src.Seed(seed)
	return rand.New(src)
}
