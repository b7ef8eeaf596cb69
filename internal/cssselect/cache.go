package cssselect

import lru "github.com/hashicorp/golang-lru/v2"

// UnifyWith results are memoized by the pointer identity of the two
// compounds, so unifying the same pair again skips redoing the
// simple-selector deduplication work. extendCompound unifies against a
// remainder compound it has just built, so its calls add entries without
// hitting earlier ones. Bounded so a pathological stylesheet with many
// one-off compounds can't grow this without limit.
const unifyCacheSize = 4096

var unifyCache = mustNewUnifyCache()

func mustNewUnifyCache() *lru.Cache[unifyCacheKey, *Compound] {
	cache, err := lru.New[unifyCacheKey, *Compound](unifyCacheSize)
	if err != nil {
		// Only possible failure is a non-positive size, which is a
		// programmer error in this file, not a runtime condition.
		panic(err)
	}
	return cache
}
