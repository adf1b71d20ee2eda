package layout

import "reflex/internal/entity"

// cache keeps successful layouts only. A type that fails today because it
// is incomplete may be completed later.
type cache struct {
	byType map[entity.TypeID]TypeLayout
}

func newCache() *cache {
	return &cache{byType: make(map[entity.TypeID]TypeLayout, 256)}
}

func (c *cache) get(id entity.TypeID) (TypeLayout, bool) {
	if c == nil {
		return TypeLayout{}, false
	}
	l, ok := c.byType[id]
	return l, ok
}

func (c *cache) put(id entity.TypeID, l TypeLayout) {
	if c == nil {
		return
	}
	c.byType[id] = l
}

func (c *cache) len() int {
	if c == nil {
		return 0
	}
	return len(c.byType)
}
