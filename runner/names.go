package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

var nonWord = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// ExtractFilenamePrefix derives the output-name prefix from an input base
// name: the first three whitespace-separated words joined by underscores,
// with every character outside [A-Za-z0-9_] deleted. An empty name yields
// "NoName".
func ExtractFilenamePrefix(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "NoName"
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return nonWord.ReplaceAllString(strings.Join(words, "_"), "")
}

// Namer assigns collision-free output paths in one directory. Probe and
// claim run under a single mutex, and claims made during the current run
// are remembered, so two tasks racing on the same date and prefix cannot
// end up with the same path even before either file exists on disk.
type Namer struct {
	dir     string
	mu      sync.Mutex
	claimed map[string]struct{}
}

func NewNamer(dir string) *Namer {
	return &Namer{dir: dir, claimed: make(map[string]struct{})}
}

// Claim reserves and returns the first unused path of the form
// {YYYY-MM-DD}_Email_{prefix}.pdf, appending _1, _2, ... on conflicts.
func (n *Namer) Claim(date time.Time, prefix string) string {
	formatted := date.Format("2006-01-02")

	n.mu.Lock()
	defer n.mu.Unlock()

	path := filepath.Join(n.dir, fmt.Sprintf("%s_Email_%s.pdf", formatted, prefix))
	for counter := 1; n.taken(path); counter++ {
		path = filepath.Join(n.dir, fmt.Sprintf("%s_Email_%s_%d.pdf", formatted, prefix, counter))
	}
	n.claimed[path] = struct{}{}
	return path
}

func (n *Namer) taken(path string) bool {
	if _, ok := n.claimed[path]; ok {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
