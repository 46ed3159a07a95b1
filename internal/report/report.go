package report

import (
	"fmt"
	"strings"
)

const (
	titlePrefix     = "## Plan result"
	noChangesNotice = "No changes. Kubernetes configurations are up-to-date."
)

// Report is a rendered plan result ready to be posted as a comment.
type Report struct {
	// Title is the first line of Body and identifies the build.
	Title string

	// Body is the complete markdown comment, title included.
	Body string

	target string
}

// Title returns the report title for an optional target label.
func Title(target string) string {
	if target == "" {
		return titlePrefix
	}
	return fmt.Sprintf("%s (%s)", titlePrefix, target)
}

// Render builds the markdown report for a classified change set.
func Render(c *Classification, link, target string) *Report {
	title := Title(target)

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "[CI link]( %s )\n\n", link)

	if c.IsEmpty() {
		fmt.Fprintf(&b, "```\n%s\n```\n", noChangesNotice)
		return &Report{Title: title, Body: b.String(), target: target}
	}

	sections := []struct {
		name string
		keys []string
	}{
		{"created", c.Created},
		{"pruned", c.Pruned},
		{"configured", c.Configured},
	}
	for _, s := range sections {
		if len(s.keys) == 0 {
			continue
		}
		fmt.Fprintf(&b, "* %s\n", s.name)
		for _, key := range s.keys {
			fmt.Fprintf(&b, "  * %s\n", key)
		}
	}

	b.WriteString("\n<details><summary>Details (Click me)</summary>\n\n")
	for _, key := range c.Keys() {
		fmt.Fprintf(&b, "### %s\n```diff\n%s\n```\n", key, c.Diff(key))
	}
	b.WriteString("\n</details>\n")

	return &Report{Title: title, Body: b.String(), target: target}
}

// Fingerprint returns the string that identifies this build in earlier comments.
func (r *Report) Fingerprint() string {
	return r.Title
}

// IsSameBuild reports whether a comment body was posted for the same build.
// Without a target every build shares the same title, so nothing matches.
func (r *Report) IsSameBuild(comment string) bool {
	if r.target == "" {
		return false
	}
	firstLine, _, _ := strings.Cut(comment, "\n")
	return firstLine == r.Title
}
