package indexer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"groom/githost"
	"groom/pipeline"
)

// MaxFileSize excludes large blobs from the work queue.
const MaxFileSize = 500000

// TreeSource is the slice of the repository gateway the indexer needs.
type TreeSource interface {
	DefaultBranch(ctx context.Context) (string, error)
	Tree(ctx context.Context, branch string) ([]githost.TreeEntry, error)
}

// Indexer enumerates a repository's file tree once per run and produces the
// ordered work queue.
type Indexer struct {
	source TreeSource
}

// New creates an indexer over the given tree source.
func New(source TreeSource) *Indexer {
	return &Indexer{source: source}
}

// Index resolves the default branch, lists the full tree, and returns the
// filtered, ordered sequence of processable paths. Re-running against an
// unchanged tree yields the same queue in the same order.
func (ix *Indexer) Index(ctx context.Context) ([]string, error) {
	branch, err := ix.source.DefaultBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving default branch: %w", err)
	}

	entries, err := ix.source.Tree(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("listing tree of '%s': %w", branch, err)
	}

	queue := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type != "blob" {
			continue
		}
		if entry.Size >= MaxFileSize {
			continue
		}
		if !pipeline.Classifiable(entry.Path) {
			continue
		}
		if Excluded(entry.Path) {
			continue
		}
		queue = append(queue, entry.Path)
	}
	return queue, nil
}

// Directory trees that are never worth processing.
var excludedDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"target":       true,
	".git":         true,
	".svn":         true,
	".hg":          true,
	".idea":        true,
	".vscode":      true,
	"__pycache__":  true,
}

// Generated dependency manifests; rewriting them breaks installs.
var lockfiles = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
	"cargo.lock":        true,
	"gemfile.lock":      true,
	"poetry.lock":       true,
	"composer.lock":     true,
}

// Excluded reports whether p matches the fixed exclusion rules: dependency
// and build-output directories, version-control metadata, minified files,
// and lockfiles.
func Excluded(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if excludedDirs[strings.ToLower(part)] {
			return true
		}
	}
	base := strings.ToLower(path.Base(p))
	if lockfiles[base] {
		return true
	}
	return strings.Contains(base, ".min.")
}
