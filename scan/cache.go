package scan

import (
	"fmt"
	"log"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"

	"github.com/floedb/floe/table"
)

// cacheKey identifies one planning request. Two scans that would plan
// identically must produce equal keys, so the key is derived from the
// realized scan state (resolved snapshot id, combined filter string), never
// from object identity.
type cacheKey struct {
	table         string
	snapshotID    *int64
	splitSize     *int64
	filter        string
	caseSensitive bool
}

func cacheKeyFrom(sc table.ScanBuilder, splitSize *int64) cacheKey {
	var snapshotID *int64
	if snapshot := sc.Snapshot(); snapshot != nil {
		id := snapshot.ID
		snapshotID = &id
	}
	return cacheKey{
		table:         sc.Table().Name(),
		snapshotID:    snapshotID,
		splitSize:     splitSize,
		filter:        sc.CombinedFilter().String(),
		caseSensitive: sc.IsCaseSensitive(),
	}
}

func (k cacheKey) String() string {
	return fmt.Sprintf(
		"%s|snapshot=%s|split=%s|filter=%s|caseSensitive=%t",
		k.table, formatOptional(k.snapshotID), formatOptional(k.splitSize), k.filter, k.caseSensitive,
	)
}

func formatOptional(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// planningCache memoizes planned task lists process-wide. Entries are
// admitted and evicted by cost (total task count), so a cached plan can
// disappear under memory pressure and get recomputed later; the only hard
// guarantee is one concurrent planning computation per key.
type planningCache struct {
	cache *ristretto.Cache
	group singleflight.Group
}

const maxCachedTasks = 1 << 20

func newPlanningCache() *planningCache {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxCachedTasks,
		MaxCost:     maxCachedTasks,
		BufferItems: 64,
	})
	if err != nil {
		panic(fmt.Sprintf("invalid planning cache config: %s", err))
	}
	return &planningCache{cache: cache}
}

var sharedPlanningCache = newPlanningCache()

func (c *planningCache) get(key cacheKey, plan func() ([]table.TaskGroup, error)) ([]table.TaskGroup, error) {
	k := key.String()
	if cached, ok := c.cache.Get(k); ok {
		return cached.([]table.TaskGroup), nil
	}

	out, err, _ := c.group.Do(k, func() (interface{}, error) {
		if cached, ok := c.cache.Get(k); ok {
			return cached, nil
		}
		log.Printf("planning scan tasks for %s (no cached tasks available)", key.table)
		groups, err := plan()
		if err != nil {
			return nil, err
		}
		c.cache.Set(k, groups, taskCost(groups))
		// Publish synchronously so a sequential caller with the same key
		// observes the entry instead of replanning.
		c.cache.Wait()
		return groups, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]table.TaskGroup), nil
}

func taskCost(groups []table.TaskGroup) int64 {
	var cost int64 = 1
	for i := range groups {
		cost += int64(len(groups[i].Tasks))
	}
	return cost
}
