package diagnostics

import "encoding/json"

// GroupingCounter counts findings per grouping key, remembering the order in
// which keys were first seen.
type GroupingCounter struct {
	keys   []string
	counts map[string]int
}

func NewGroupingCounter() *GroupingCounter {
	return &GroupingCounter{counts: make(map[string]int)}
}

// Increment adds one to key and returns the new count.
func (c *GroupingCounter) Increment(key string) int {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
	return c.counts[key]
}

func (c *GroupingCounter) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.counts[key]
}

// Keys returns the keys in first-seen order.
func (c *GroupingCounter) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

func (c *GroupingCounter) Each(fn func(key string, count int)) {
	if c == nil {
		return
	}
	for _, k := range c.keys {
		fn(k, c.counts[k])
	}
}

// Len returns the number of distinct keys.
func (c *GroupingCounter) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Total returns the sum of all counts.
func (c *GroupingCounter) Total() int {
	total := 0
	c.Each(func(_ string, n int) { total += n })
	return total
}

type groupJSON struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func (c *GroupingCounter) MarshalJSON() ([]byte, error) {
	out := make([]groupJSON, 0, c.Len())
	c.Each(func(k string, n int) { out = append(out, groupJSON{Key: k, Count: n}) })
	return json.Marshal(out)
}
