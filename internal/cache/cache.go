package cache

import (
	"sync"

	"github.com/zombiearmy/horde/pkg/core"
)

// ArmyCache keeps the last persisted copy of each army so reads and battles
// skip the storage round trip. Entries are copies; callers never share the
// backing array with the cache.
type ArmyCache struct {
	mu     sync.RWMutex
	armies map[core.Identity]core.Army

	locksMu sync.Mutex
	locks   map[core.Identity]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func NewArmyCache() *ArmyCache {
	return &ArmyCache{
		armies: make(map[core.Identity]core.Army),
		locks:  make(map[core.Identity]*ownerLock),
	}
}

func (c *ArmyCache) Get(owner core.Identity) (core.Army, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.armies[owner]
	return a, ok
}

func (c *ArmyCache) Set(a core.Army) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armies[a.Owner] = a
}

func (c *ArmyCache) Invalidate(owner core.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.armies, owner)
}

func (c *ArmyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.armies)
}

func (c *ArmyCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armies = make(map[core.Identity]core.Army)
}

// Lock serializes operations on a single army and returns the matching unlock.
// Locks for different owners never contend.
func (c *ArmyCache) Lock(owner core.Identity) (unlock func()) {
	c.locksMu.Lock()
	l, ok := c.locks[owner]
	if !ok {
		l = &ownerLock{}
		c.locks[owner] = l
	}
	l.refs++
	c.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, owner)
		}
		c.locksMu.Unlock()
	}
}
