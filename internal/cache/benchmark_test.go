package cache_test

import (
	"strconv"
	"testing"

	"github.com/Sumatoshi-tech/pegkit/internal/cache"
)

const (
	// benchPreloadCount is the number of items to preload for benchmarks.
	benchPreloadCount = 10_000

	// benchMissRatio80 is the fraction of lookups that target absent keys (80%).
	benchMissRatio80 = 80

	// benchPercentDivisor converts a percentage to a threshold for modular comparison.
	benchPercentDivisor = 100

	// benchValueSize is the accounted size of each value.
	benchValueSize = 64
)

func benchKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = "grammar-" + strconv.Itoa(i)
	}

	return keys
}

func newBenchLRU(b *testing.B, keys []string) *cache.LRU[string, int64] {
	b.Helper()

	lru := cache.New(
		cache.WithMaxEntries[string, int64](benchPreloadCount),
		cache.WithMaxSize[string](benchPreloadCount*benchValueSize, func(v int64) int64 { return v }),
	)

	for _, key := range keys[:benchPreloadCount] {
		lru.Put(key, benchValueSize)
	}

	return lru
}

// BenchmarkLRUGet_MissHeavy benchmarks Get with 80% miss ratio.
func BenchmarkLRUGet_MissHeavy(b *testing.B) {
	keys := benchKeys(2 * benchPreloadCount)
	lru := newBenchLRU(b, keys)

	b.ResetTimer()

	for i := range b.N {
		idx := i % benchPreloadCount

		// 80% of lookups target absent keys (offset beyond preloaded range).
		if i%benchPercentDivisor < benchMissRatio80 {
			idx += benchPreloadCount
		}

		lru.Get(keys[idx])
	}
}

// BenchmarkLRUGet_HitHeavy benchmarks Get with 100% hit ratio.
func BenchmarkLRUGet_HitHeavy(b *testing.B) {
	keys := benchKeys(benchPreloadCount)
	lru := newBenchLRU(b, keys)

	b.ResetTimer()

	for i := range b.N {
		lru.Get(keys[i%benchPreloadCount])
	}
}

// BenchmarkLRUPut_Evicting benchmarks Put when every insert evicts.
func BenchmarkLRUPut_Evicting(b *testing.B) {
	keys := benchKeys(2 * benchPreloadCount)
	lru := newBenchLRU(b, keys)

	b.ResetTimer()

	for i := range b.N {
		lru.Put(keys[i%len(keys)], benchValueSize)
	}
}
