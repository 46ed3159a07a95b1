package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/drewdunne/ksnotify/internal/metrics"
)

// ErrMalformedDiff indicates the diff text could not be split into
// well-formed resource blocks.
var ErrMalformedDiff = errors.New("malformed diff")

var (
	// keyPattern matches a block start like
	// "diff -u -N /tmp/LIVE-123/v1.Service.ns.app /tmp/MERGED-456/v1.Service.ns.app"
	// and captures the final path segment of the first path.
	keyPattern = regexp.MustCompile(`^diff(?:\s+-\S+)*\s+\S*/([^/\s]+)\s+\S*/[^/\s]+\s*$`)

	// headerPattern matches every line that delimits blocks.
	headerPattern = regexp.MustCompile(`^(diff\s|---|\+\+\+)`)
)

// Block is one resource section of the diff.
type Block struct {
	Key  string
	Body string
}

// Blocks splits diff text into resource blocks in source order.
//
// Keys and bodies are collected independently, keys from block start lines and
// bodies from the text between header lines, and then paired by index. A
// differing number of keys and bodies returns ErrMalformedDiff.
func Blocks(text string) ([]Block, error) {
	var keys, bodies []string
	var chunk []string

	flush := func() {
		body := strings.TrimSpace(strings.Join(chunk, "\n"))
		if body != "" {
			bodies = append(bodies, body)
		}
		chunk = chunk[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if m := keyPattern.FindStringSubmatch(line); m != nil {
			keys = append(keys, m[1])
		}
		if headerPattern.MatchString(line) {
			flush()
			continue
		}
		chunk = append(chunk, line)
	}
	flush()

	if len(keys) != len(bodies) {
		return nil, fmt.Errorf("%w: found %d resource headers but %d diff bodies", ErrMalformedDiff, len(keys), len(bodies))
	}

	blocks := make([]Block, len(keys))
	for i := range keys {
		blocks[i] = Block{Key: keys[i], Body: bodies[i]}
	}
	return blocks, nil
}

// Parse splits diff text into a change set keyed by resource.
func Parse(text string) (*ChangeSet, error) {
	blocks, err := Blocks(text)
	if err != nil {
		return nil, err
	}

	cs := NewChangeSet()
	for _, b := range blocks {
		cs.Set(b.Key, b.Body)
	}
	metrics.ResourcesParsed(len(blocks))
	log.Debugf("Parsed %d diff blocks into %d resources", len(blocks), cs.Len())

	return cs, nil
}
