package report

import (
	"regexp"
	"sort"

	"github.com/drewdunne/ksnotify/internal/parser"
)

var (
	createdPattern = regexp.MustCompile(`(?m)^\+kind: `)
	prunedPattern  = regexp.MustCompile(`(?m)^-kind: `)
)

// Classification partitions the resources of a change set by kind of change.
//
// Categories are not exclusive: a resource whose kind line was both removed
// and added is listed as created and as pruned.
type Classification struct {
	Created    []string
	Pruned     []string
	Configured []string

	changes *parser.ChangeSet
}

// Classify sorts every resource of cs into created, pruned or configured.
func Classify(cs *parser.ChangeSet) *Classification {
	c := &Classification{changes: cs}

	for _, key := range cs.Keys() {
		body, _ := cs.Get(key)
		created := createdPattern.MatchString(body)
		pruned := prunedPattern.MatchString(body)

		if created {
			c.Created = append(c.Created, key)
		}
		if pruned {
			c.Pruned = append(c.Pruned, key)
		}
		if !created && !pruned {
			c.Configured = append(c.Configured, key)
		}
	}

	sort.Strings(c.Created)
	sort.Strings(c.Pruned)
	sort.Strings(c.Configured)

	return c
}

// IsEmpty reports whether no resource changed.
func (c *Classification) IsEmpty() bool {
	return c.changes == nil || c.changes.IsEmpty()
}

// Keys returns every resource key, sorted.
func (c *Classification) Keys() []string {
	if c.changes == nil {
		return nil
	}
	keys := c.changes.Keys()
	sort.Strings(keys)
	return keys
}

// Diff returns the filtered diff body of a resource.
func (c *Classification) Diff(key string) string {
	if c.changes == nil {
		return ""
	}
	body, _ := c.changes.Get(key)
	return body
}
