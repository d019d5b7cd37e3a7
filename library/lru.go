package library

import (
	"container/list"
	"sync"

	"go.uber.org/zap"
)

// LRU evicts least recently used documents once cache holds more than
// capacity documents. It follows cache notifications only, so documents
// added directly with Cache.Add are accounted for as well.
type LRU struct {
	cache    *Cache
	capacity int
	log      *zap.Logger
	cancel   func()

	mu    sync.Mutex
	order *list.List
	elems map[string]*list.Element
}

// NewLRU attaches eviction policy to the cache. Capacity 0 means no limit.
func NewLRU(cache *Cache, capacity int, log *zap.Logger) *LRU {
	if log == nil {
		log = zap.NewNop()
	}
	p := &LRU{
		cache:    cache,
		capacity: capacity,
		log:      log.Named("lru"),
		order:    list.New(),
		elems:    make(map[string]*list.Element),
	}
	p.cancel = cache.Subscribe(p.handle)
	return p
}

func (p *LRU) handle(ev Event) {
	var victims []string

	p.mu.Lock()
	switch ev.Kind {
	case DocumentAdded:
		if e, ok := p.elems[ev.Key]; ok {
			p.order.MoveToFront(e)
		} else {
			p.elems[ev.Key] = p.order.PushFront(ev.Key)
		}
		for p.capacity > 0 && p.order.Len() > p.capacity {
			e := p.order.Back()
			key := e.Value.(string)
			p.order.Remove(e)
			delete(p.elems, key)
			victims = append(victims, key)
		}
	case DocumentUsed:
		if e, ok := p.elems[ev.Key]; ok {
			p.order.MoveToFront(e)
		}
	case DocumentEvicted:
		if e, ok := p.elems[ev.Key]; ok {
			p.order.Remove(e)
			delete(p.elems, ev.Key)
		}
	}
	p.mu.Unlock()

	// evicting raises notifications which come back here
	for _, key := range victims {
		if p.cache.Evict(key) {
			p.log.Debug("Least recently used document evicted", zap.String("name", key))
		}
	}
}

// Len returns number of tracked documents.
func (p *LRU) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.order.Len()
}

// Keys returns tracked keys, most recently used first.
func (p *LRU) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := make([]string, 0, p.order.Len())
	for e := p.order.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(string))
	}
	return keys
}

// Detach stops following the cache.
func (p *LRU) Detach() {
	p.cancel()
}
