package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/seehuhn/mt19937"
	"github.com/zeebo/blake3"
)

const (
	HashSHA256 = "sha256"
	HashBlake3 = "blake3"
)

// SeedHasher digests the fairness seed material into 32 bytes.
type SeedHasher interface {
	Sum(data []byte) []byte
}

type sha256Hasher struct{}

func (sha256Hasher) Sum(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

var blake3Pool = &sync.Pool{
	New: func() any {
		return blake3.New()
	},
}

type blake3Hasher struct{}

func (blake3Hasher) Sum(data []byte) []byte {
	h := blake3Pool.Get().(*blake3.Hasher)
	defer func() {
		h.Reset()
		blake3Pool.Put(h)
	}()

	// Write on a blake3 hasher never returns an error.
	_, _ = h.Write(data)
	return h.Sum(nil)
}

// NewSeedHasher returns the hasher registered under name. An empty name
// selects SHA-256.
func NewSeedHasher(name string) (SeedHasher, error) {
	switch name {
	case "", HashSHA256:
		return sha256Hasher{}, nil
	case HashBlake3:
		return blake3Hasher{}, nil
	}

	return nil, fmt.Errorf("unknown seed hash %q", name)
}

// DeriveSeed hashes the big-endian timestamp followed by the big-endian
// ledger height.
func DeriveSeed(hasher SeedHasher, timestamp uint64, height uint32) []byte {
	material := make([]byte, 12)
	binary.BigEndian.PutUint64(material[:8], timestamp)
	binary.BigEndian.PutUint32(material[8:], height)
	return hasher.Sum(material)
}

// SeededIntn returns a value in [0, n) fully determined by seed. It panics
// if n is not positive.
func SeededIntn(seed []byte, n int) int {
	if n <= 0 {
		panic("invalid argument to SeededIntn")
	}

	mt := mt19937.New()
	mt.SeedFromSlice(seedWords(seed))
	return int(rand.New(mt).Int63n(int64(n)))
}

// seedWords packs seed into big-endian words, zero padding the last one.
func seedWords(seed []byte) []uint64 {
	words := make([]uint64, 0, (len(seed)+7)/8)
	for i := 0; i < len(seed); i += 8 {
		var chunk [8]byte
		copy(chunk[:], seed[i:])
		words = append(words, binary.BigEndian.Uint64(chunk[:]))
	}

	if len(words) == 0 {
		words = append(words, 0)
	}

	return words
}
