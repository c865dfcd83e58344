package indexer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groom/githost"
)

type fakeTreeSource struct {
	branch    string
	branchErr error
	entries   []githost.TreeEntry
	treeErr   error
}

func (f *fakeTreeSource) DefaultBranch(ctx context.Context) (string, error) {
	return f.branch, f.branchErr
}

func (f *fakeTreeSource) Tree(ctx context.Context, branch string) ([]githost.TreeEntry, error) {
	return f.entries, f.treeErr
}

func TestIndex_FiltersAndPreservesOrder(t *testing.T) {
	source := &fakeTreeSource{
		branch: "main",
		entries: []githost.TreeEntry{
			{Path: "src/main.go", Type: "blob", Size: 1200},
			{Path: "src", Type: "tree", Size: 0},
			{Path: "README.md", Type: "blob", Size: 800},
			{Path: "assets/logo.png", Type: "blob", Size: 50},
			{Path: "node_modules/pkg/index.js", Type: "blob", Size: 100},
			{Path: "vendor/lib/lib.go", Type: "blob", Size: 100},
			{Path: "app.min.js", Type: "blob", Size: 100},
			{Path: "package-lock.json", Type: "blob", Size: 100},
			{Path: "big.go", Type: "blob", Size: MaxFileSize},
			{Path: "config.yaml", Type: "blob", Size: 300},
			{Path: ".git/config", Type: "blob", Size: 10},
		},
	}

	queue, err := New(source).Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main.go", "README.md", "config.yaml"}, queue)
}

func TestIndex_IsIdempotent(t *testing.T) {
	source := &fakeTreeSource{
		branch: "main",
		entries: []githost.TreeEntry{
			{Path: "b.go", Type: "blob", Size: 10},
			{Path: "a.go", Type: "blob", Size: 10},
		},
	}
	ix := New(source)

	first, err := ix.Index(context.Background())
	require.NoError(t, err)
	second, err := ix.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIndex_PropagatesBranchFailure(t *testing.T) {
	source := &fakeTreeSource{branchErr: fmt.Errorf("access error: repository metadata failed with status code '404'")}

	_, err := New(source).Index(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default branch")
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("node_modules/react/index.js"))
	assert.True(t, Excluded("deep/nested/node_modules/x.js"))
	assert.True(t, Excluded("dist/bundle.js"))
	assert.True(t, Excluded(".git/HEAD"))
	assert.True(t, Excluded("jquery.min.js"))
	assert.True(t, Excluded("yarn.lock"))
	assert.True(t, Excluded("Cargo.lock"))
	assert.True(t, Excluded("go.sum"))

	assert.False(t, Excluded("src/main.go"))
	assert.False(t, Excluded("docs/README.md"))
	assert.False(t, Excluded("outline.md")) // 'out' must match a whole segment
}
