package memory

import (
	"time"

	"iot-console-be/pkg/recommend"

	"github.com/patrickmn/go-cache"
)

// BundleCache holds recently fetched recommendation bundles per entity so
// repeated tab switches do not re-hit the strategy agent. Entries are
// invalidated when a regeneration job for the entity completes.
type BundleCache struct {
	cache *cache.Cache
}

func NewBundleCache() *BundleCache {
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &BundleCache{
		cache: c,
	}
}

func (r *BundleCache) Save(bundle recommend.Bundle) {
	r.cache.Set(bundle.EntityId, bundle, cache.DefaultExpiration)
}

func (r *BundleCache) Get(entityId string) (recommend.Bundle, bool) {
	if x, found := r.cache.Get(entityId); found {
		return x.(recommend.Bundle), true
	}
	return recommend.Bundle{}, false
}

func (r *BundleCache) Invalidate(entityId string) {
	r.cache.Delete(entityId)
}

func (r *BundleCache) Flush() {
	r.cache.Flush()
}
