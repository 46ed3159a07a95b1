package parser

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/drewdunne/ksnotify/internal/metrics"
)

var (
	// generationPattern matches metadata.generation, which the API server
	// bumps on every apply.
	generationPattern = regexp.MustCompile(`generation: \d+`)

	// runIDPattern matches the label skaffold stamps on every deployed object.
	runIDPattern = regexp.MustCompile(`skaffold\.dev/run-id`)

	labelsPattern = regexp.MustCompile(`^.*labels:\s*$`)

	// changePattern matches an added or removed line.
	changePattern = regexp.MustCompile(`(?m)^[-+]`)
)

// FilterOptions controls which optional noise is suppressed.
type FilterOptions struct {
	// SuppressSkaffold removes skaffold.dev/run-id labels.
	SuppressSkaffold bool
}

// Filter removes noise lines from every body in cs and drops resources that
// are left without any added or removed line. The input set is not modified.
func Filter(cs *ChangeSet, opts FilterOptions) *ChangeSet {
	out := filterPass(cs, "generation", removeGenerationFields)
	if opts.SuppressSkaffold {
		out = filterPass(out, "skaffold run-id", removeSkaffoldLabels)
	}
	return out
}

func filterPass(cs *ChangeSet, name string, fn func(string) string) *ChangeSet {
	out := NewChangeSet()
	for _, key := range cs.Keys() {
		body, _ := cs.Get(key)
		body = fn(body)
		if !HasChanges(body) {
			log.Debugf("Suppressed %s: only %s changes", key, name)
			metrics.ResourceSuppressed()
			continue
		}
		out.Set(key, body)
	}
	return out
}

// HasChanges reports whether body contains an added or removed line.
func HasChanges(body string) bool {
	return changePattern.MatchString(body)
}

func removeGenerationFields(body string) string {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if generationPattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// removeSkaffoldLabels drops run-id label lines. A "labels:" line directly
// above a dropped run-id line goes too when no other child follows it.
func removeSkaffoldLabels(body string) string {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !runIDPattern.MatchString(line) {
			kept = append(kept, line)
			continue
		}

		n := len(kept)
		if n == 0 || !labelsPattern.MatchString(kept[n-1]) {
			continue
		}
		header := kept[n-1]
		if i+1 < len(lines) && isChildOf(lines[i+1], header) {
			continue
		}
		kept = kept[:n-1]
	}
	return strings.Join(kept, "\n")
}

// isChildOf reports whether line is nested under header, comparing YAML
// indentation after the one-column diff marker.
func isChildOf(line, header string) bool {
	if strings.TrimSpace(stripMarker(line)) == "" {
		return false
	}
	return indent(line) > indent(header)
}

func stripMarker(line string) string {
	if line != "" && strings.ContainsRune("+- ", rune(line[0])) {
		return line[1:]
	}
	return line
}

func indent(line string) int {
	content := stripMarker(line)
	return len(content) - len(strings.TrimLeft(content, " \t"))
}
