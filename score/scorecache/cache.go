package scorecache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoredomain"
	"github.com/patrickmn/go-cache"
	"github.com/puzpuzpuz/xsync/v3"
)

// Cache holds one computed snapshot per contest for at most maxAge. Readers
// never block on writers; writers of the same contest are serialized.
type Cache struct {
	entries *cache.Cache
	states  *xsync.MapOf[int64, *contestState]
	maxAge  time.Duration
}

// contestState serializes writers of one contest. gen grows with every write
// and every invalidation, whether or not an entry was live at the time.
type contestState struct {
	mu  sync.Mutex
	gen uint64
}

func New(maxAge time.Duration) *Cache {
	return &Cache{
		entries: cache.New(maxAge, 2*maxAge),
		states:  xsync.NewMapOf[int64, *contestState](),
		maxAge:  maxAge,
	}
}

func key(contestID int64) string {
	return strconv.FormatInt(contestID, 10)
}

func (c *Cache) lock(contestID int64) *contestState {
	st, _ := c.states.LoadOrCompute(contestID, func() *contestState {
		return &contestState{}
	})
	st.mu.Lock()
	return st
}

// Generation returns the contest's write generation. Read it before loading
// the data a snapshot is computed from and pass it to PutIfUnchanged.
func (c *Cache) Generation(contestID int64) uint64 {
	st := c.lock(contestID)
	defer st.mu.Unlock()
	return st.gen
}

// Get returns the contest's snapshot if it was stored no longer than maxAge
// ago. The snapshot must not be modified.
func (c *Cache) Get(contestID int64) (*scoredomain.Snapshot, bool) {
	v, found := c.entries.Get(key(contestID))
	if !found {
		return nil, false
	}
	snap, ok := v.(*scoredomain.Snapshot)
	return snap, ok
}

// Put stores snap as the contest's entry, replacing any previous one.
func (c *Cache) Put(contestID int64, snap *scoredomain.Snapshot) {
	st := c.lock(contestID)
	defer st.mu.Unlock()
	st.gen++
	c.entries.Set(key(contestID), snap, c.maxAge)
}

// PutIfUnchanged stores snap only if nothing was written or invalidated since
// gen was read. A false result means snap may predate an invalidation.
func (c *Cache) PutIfUnchanged(contestID int64, snap *scoredomain.Snapshot, gen uint64) bool {
	st := c.lock(contestID)
	defer st.mu.Unlock()
	if st.gen != gen {
		return false
	}
	st.gen++
	c.entries.Set(key(contestID), snap, c.maxAge)
	return true
}

// Patch replaces a live entry with fn's result. fn receives a deep copy of the
// current snapshot and may modify it freely. The patched entry keeps the
// expiry of the one it replaces. Patch reports false without calling fn when
// the contest has no live entry. Every call past the context check counts as an
// invalidation and makes pending PutIfUnchanged calls fail.
func (c *Cache) Patch(
	ctx context.Context,
	contestID int64,
	fn func(*scoredomain.Snapshot) (*scoredomain.Snapshot, error),
) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	st := c.lock(contestID)
	defer st.mu.Unlock()
	st.gen++

	v, expiresAt, found := c.entries.GetWithExpiration(key(contestID))
	if !found {
		return false, nil
	}
	cur, ok := v.(*scoredomain.Snapshot)
	if !ok {
		return false, nil
	}

	next, err := fn(cur.Clone())
	if err != nil {
		return false, err
	}
	if next == nil {
		return false, nil
	}

	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		// expired while fn ran
		return false, nil
	}
	c.entries.Set(key(contestID), next, remaining)
	return true, nil
}

func (c *Cache) Delete(contestID int64) {
	st := c.lock(contestID)
	defer st.mu.Unlock()
	st.gen++
	c.entries.Delete(key(contestID))
}

func (c *Cache) Flush() {
	c.entries.Flush()
}

// Len counts stored entries, including expired ones the janitor has not
// removed yet.
func (c *Cache) Len() int {
	return c.entries.ItemCount()
}

func (c *Cache) MaxAge() time.Duration {
	return c.maxAge
}
