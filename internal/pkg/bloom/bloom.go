// Package bloom implements a Bloom filter whose bits live in Redis.
package bloom

import (
	"context"
	_ "embed"
	"errors"
	"math"

	"companysearch/internal/pkg/hash"
	"companysearch/internal/pkg/redis"
)

var (
	// ErrTooLargeOffset is returned when an offset falls outside the bit set.
	ErrTooLargeOffset = errors.New("bloom: offset out of range")

	//go:embed set_script.lua
	setLuaScript string
	setScript    = redis.NewScript(setLuaScript)

	//go:embed get_script.lua
	getLuaScript string
	getScript    = redis.NewScript(getLuaScript)
)

// bitStore is the storage behind a Filter.
type bitStore interface {
	test(ctx context.Context, offsets []uint) (bool, error)
	mark(ctx context.Context, offsets []uint) error
	clear(ctx context.Context) error
	ttl(ctx context.Context, seconds int) (bool, error)
}

// Filter answers "definitely absent" or "maybe present" for string members.
type Filter struct {
	store  bitStore
	bits   uint
	hashes uint
}

// New returns a filter of the given width stored under key.
func New(store redis.Cache, key string, bits, hashes uint) *Filter {
	if hashes == 0 {
		hashes = 1
	}
	return &Filter{
		store:  &redisBitSet{store: store, key: key, bits: bits},
		bits:   bits,
		hashes: hashes,
	}
}

// Estimate returns the bit count and hash count that keep the false
// positive rate near p for n members.
func Estimate(n uint, p float64) (bits, hashes uint) {
	if n == 0 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = 0.01
	}
	m := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	k := math.Round(m / float64(n) * math.Ln2)
	if k < 1 {
		k = 1
	}
	return uint(m), uint(k)
}

// Bits reports the filter width.
func (f *Filter) Bits() uint { return f.bits }

// Hashes reports how many bits each member sets.
func (f *Filter) Hashes() uint { return f.hashes }

// offsets derives the bit positions with double hashing over the two
// halves of a 128 bit murmur3 digest.
func (f *Filter) offsets(member string) []uint {
	h1, h2 := hash.Sum128([]byte(member))
	out := make([]uint, f.hashes)
	for i := uint64(0); i < uint64(f.hashes); i++ {
		out[i] = uint((h1 + i*h2) % uint64(f.bits))
	}
	return out
}

// Add records member.
func (f *Filter) Add(ctx context.Context, member string) error {
	return f.store.mark(ctx, f.offsets(member))
}

// MayContain is false only when member was never added since the last Reset.
func (f *Filter) MayContain(ctx context.Context, member string) (bool, error) {
	return f.store.test(ctx, f.offsets(member))
}

// Reset empties the filter.
func (f *Filter) Reset(ctx context.Context) error {
	return f.store.clear(ctx)
}

// Expire puts a TTL on the stored bits.
func (f *Filter) Expire(ctx context.Context, seconds int) (bool, error) {
	return f.store.ttl(ctx, seconds)
}
