// Package nodecache provides the identity map shared by every resource
// encoded in one RDF pass.
//
// A Cache hands out at most one blank node per key, so a resource referenced
// by id before it is itself encoded resolves to the same node it later
// describes. Tags use the same cache under "key:value" keys. A Cache belongs to
// exactly one encoding pass and must not be shared between goroutines.
package nodecache

import (
	"fmt"

	"github.com/knakk/rdf"
)

// Cache maps stable keys to blank nodes and allocates fresh anonymous nodes.
type Cache struct {
	nodes map[string]rdf.Blank
	next  int
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{nodes: make(map[string]rdf.Blank)}
}

// GetOrCreate returns the node for key, allocating it on first use.
// The boolean reports whether the node was created by this call.
func (c *Cache) GetOrCreate(key string) (rdf.Blank, bool, error) {
	if node, ok := c.nodes[key]; ok {
		return node, false, nil
	}
	node, err := c.NewNode()
	if err != nil {
		return rdf.Blank{}, false, err
	}
	c.nodes[key] = node
	return node, true, nil
}

// Get returns the node for key if one was created.
func (c *Cache) Get(key string) (rdf.Blank, bool) {
	node, ok := c.nodes[key]
	return node, ok
}

// NewNode allocates a blank node that is not bound to any key.
// Ids are sequential within the cache so repeated passes are reproducible.
func (c *Cache) NewNode() (rdf.Blank, error) {
	node, err := rdf.NewBlank(fmt.Sprintf("n%d", c.next))
	if err != nil {
		return rdf.Blank{}, fmt.Errorf("failed to allocate blank node: %w", err)
	}
	c.next++
	return node, nil
}

// Len returns the number of keyed nodes.
func (c *Cache) Len() int {
	return len(c.nodes)
}
