package parser

import (
	log "github.com/sirupsen/logrus"
)

// ChangeSet maps resource keys to their diff bodies, preserving the order in
// which keys were first seen.
type ChangeSet struct {
	keys   []string
	bodies map[string]string
}

// NewChangeSet creates an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{bodies: make(map[string]string)}
}

// Set stores body under key. A key that is already present keeps its position
// and its body is replaced (last write wins).
func (c *ChangeSet) Set(key, body string) {
	if _, ok := c.bodies[key]; ok {
		log.Warnf("Duplicate resource %s in diff, keeping the last occurrence", key)
	} else {
		c.keys = append(c.keys, key)
	}
	c.bodies[key] = body
}

// Get returns the body stored for key.
func (c *ChangeSet) Get(key string) (string, bool) {
	body, ok := c.bodies[key]
	return body, ok
}

// Keys returns the resource keys in insertion order.
func (c *ChangeSet) Keys() []string {
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Len returns the number of resources.
func (c *ChangeSet) Len() int {
	return len(c.keys)
}

// IsEmpty reports whether the set holds no resources.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.keys) == 0
}
