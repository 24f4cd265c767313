package layout

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Id prefixes used for generated node ids.
const (
	PrefixSection   = "section"
	PrefixRow       = "row"
	PrefixColumn    = "column"
	PrefixComponent = "component"
)

// IDSource generates node ids. Implementations must never return the same
// id twice.
type IDSource interface {
	NewID(prefix string) string
}

// UUIDSource generates "prefix-<uuid v7>" ids. Version 7 ids sort by
// creation time, which keeps generated ids readable in stored schemas.
type UUIDSource struct{}

func (UUIDSource) NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}

// CounterSource generates "prefix-1", "prefix-2", ... with one counter per
// prefix. Deterministic ids make tests readable.
type CounterSource struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewCounterSource() *CounterSource {
	return &CounterSource{counts: make(map[string]int)}
}

func (c *CounterSource) NewID(prefix string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[prefix]++
	return prefix + "-" + strconv.Itoa(c.counts[prefix])
}

// IDSourceFunc adapts a function to IDSource.
type IDSourceFunc func(prefix string) string

func (f IDSourceFunc) NewID(prefix string) string { return f(prefix) }
