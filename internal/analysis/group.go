package analysis

// groups accumulates values per key and remembers first-seen key order so
// the stable sorts that follow are deterministic for a given input.
type groups[K comparable, V any] struct {
	order []K
	byKey map[K]*V
}

func newGroups[K comparable, V any]() *groups[K, V] {
	return &groups[K, V]{byKey: make(map[K]*V)}
}

func (g *groups[K, V]) get(key K) *V {
	if v, ok := g.byKey[key]; ok {
		return v
	}
	v := new(V)
	g.byKey[key] = v
	g.order = append(g.order, key)
	return v
}

func (g *groups[K, V]) each(fn func(K, *V)) {
	for _, k := range g.order {
		fn(k, g.byKey[k])
	}
}

type counter struct {
	total   int
	defects int
}

func (c *counter) add(defect bool) {
	c.total++
	if defect {
		c.defects++
	}
}
