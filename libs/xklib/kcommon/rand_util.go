package kcommon

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"

	"github.com/xinkaiwang/rtsplanner/libs/xklib/klogging"
)

const defaultCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type SafeRand struct {
	mu         sync.Mutex
	seededRand *rand.Rand
}

var safeRand SafeRand

type OpGetRand func(*rand.Rand)

// GetRandom runs op against the shared, crypto-seeded generator.
func GetRandom(ctx context.Context, op OpGetRand) {
	safeRand.mu.Lock()
	defer safeRand.mu.Unlock()
	if safeRand.seededRand == nil {
		safeRand.seededRand = rand.New(rand.NewSource(CryptoSeed(ctx)))
	}
	op(safeRand.seededRand)
}

// CryptoSeed returns a non-zero seed read from crypto/rand, falling back to the wall clock.
func CryptoSeed(ctx context.Context) int64 {
	buf := make([]byte, 8)
	if _, err := crypto_rand.Read(buf); err != nil {
		klogging.Warning(ctx).WithError(err).Log("CryptoRandSeedFailed", "")
		return GetWallTimeMs() | 1
	}
	seed := int64(binary.BigEndian.Uint64(buf) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// NewSeededRand returns a generator owned by one goroutine. Same seed, same sequence.
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func StringWithCharset(ctx context.Context, length int, charset string) string {
	b := make([]byte, length)
	GetRandom(ctx, func(r *rand.Rand) {
		for i := range b {
			b[i] = charset[r.Intn(len(charset))]
		}
	})
	return string(b)
}

func RandomString(ctx context.Context, length int) string {
	return StringWithCharset(ctx, length, defaultCharset)
}

// ShuffledIndexes returns 0..n-1 in random order drawn from rnd.
func ShuffledIndexes(rnd *rand.Rand, n int) []int {
	return rnd.Perm(n)
}
