package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groom/githost"
)

type fakeGateway struct {
	file     githost.RemoteFile
	fetchErr error
	writeErr error

	writes      int
	writtenPath string
	writtenSHA  string
	writtenBody string
	writtenMsg  string
}

func (f *fakeGateway) FetchFile(ctx context.Context, path string) (githost.RemoteFile, error) {
	if f.fetchErr != nil {
		return githost.RemoteFile{}, f.fetchErr
	}
	return f.file, nil
}

func (f *fakeGateway) UpdateFile(ctx context.Context, path string, content string, sha string, message string) error {
	f.writes++
	f.writtenPath = path
	f.writtenSHA = sha
	f.writtenBody = content
	f.writtenMsg = message
	return f.writeErr
}

type fakeGenerator struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, systemInstruction string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	response := f.responses[f.calls%len(f.responses)]
	f.calls++
	return response, nil
}

func TestRun_MaterialChangeIsWrittenBack(t *testing.T) {
	gateway := &fakeGateway{file: githost.RemoteFile{Content: "def old():\n    pass\n", SHA: "abc123"}}
	generator := &fakeGenerator{responses: []string{"def improved():\n    return 42\n"}}
	executor := NewExecutor(gateway, generator)

	outcome := executor.Run(context.Background(), "a.py")

	assert.Equal(t, Mutated, outcome.Kind)
	require.Equal(t, 1, gateway.writes)
	assert.Equal(t, "a.py", gateway.writtenPath)
	// The write must carry the revision token from the original fetch.
	assert.Equal(t, "abc123", gateway.writtenSHA)
	assert.Equal(t, "def improved():\n    return 42", gateway.writtenBody)
	assert.Contains(t, gateway.writtenMsg, "a.py")
}

func TestRun_IdenticalResultIsSkipped(t *testing.T) {
	content := "# Title\n\nSome documentation."
	gateway := &fakeGateway{file: githost.RemoteFile{Content: content, SHA: "abc123"}}
	generator := &fakeGenerator{responses: []string{content}}
	executor := NewExecutor(gateway, generator)

	outcome := executor.Run(context.Background(), "b.md")

	assert.Equal(t, Skipped, outcome.Kind)
	assert.Equal(t, 0, outcome.StepsAccepted)
	assert.Equal(t, 0, gateway.writes)
}

func TestRun_FetchFailureIsError(t *testing.T) {
	gateway := &fakeGateway{fetchErr: fmt.Errorf("access error: fetching 'c.json' failed with status code '403'")}
	generator := &fakeGenerator{responses: []string{"unused"}}
	executor := NewExecutor(gateway, generator)

	outcome := executor.Run(context.Background(), "c.json")

	assert.Equal(t, Failed, outcome.Kind)
	assert.Contains(t, outcome.Message, "403")
	assert.Equal(t, 0, gateway.writes)
}

func TestRun_GeneratorFailureIsError(t *testing.T) {
	gateway := &fakeGateway{file: githost.RemoteFile{Content: "content here", SHA: "abc"}}
	generator := &fakeGenerator{err: fmt.Errorf("AI call exhausted after 5 retries (last status 500)")}
	executor := NewExecutor(gateway, generator)

	outcome := executor.Run(context.Background(), "a.go")

	assert.Equal(t, Failed, outcome.Kind)
	assert.Contains(t, outcome.Message, "exhausted")
	assert.Equal(t, 0, gateway.writes)
}

func TestRun_WriteFailureIsError(t *testing.T) {
	gateway := &fakeGateway{
		file:     githost.RemoteFile{Content: "old content", SHA: "stale"},
		writeErr: fmt.Errorf("write to 'a.go' failed with status code '409'"),
	}
	generator := &fakeGenerator{responses: []string{"brand new content"}}
	executor := NewExecutor(gateway, generator)

	outcome := executor.Run(context.Background(), "a.go")

	assert.Equal(t, Failed, outcome.Kind)
	assert.Contains(t, outcome.Message, "409")
}

func TestRun_EachStepSeesPreviousBest(t *testing.T) {
	gateway := &fakeGateway{file: githost.RemoteFile{Content: "version zero", SHA: "s"}}
	generator := &fakeGenerator{responses: []string{"version one!", "version two!!", "version three"}}
	executor := NewExecutor(gateway, generator)

	outcome := executor.Run(context.Background(), "main.go") // code pipeline, 3 steps

	assert.Equal(t, Mutated, outcome.Kind)
	assert.Equal(t, 3, outcome.StepsAccepted)
	assert.Equal(t, "version three", gateway.writtenBody)
}

func TestCleanResult_StripsFences(t *testing.T) {
	fenced := "```python\ndef f():\n    pass\n```"
	assert.Equal(t, "def f():\n    pass", cleanResult(fenced))

	bare := "def f():\n    pass"
	assert.Equal(t, bare, cleanResult(bare))

	assert.Equal(t, "x = 1", cleanResult("```\nx = 1\n```\n"))
}

func TestIsMaterial_TrivialityRejection(t *testing.T) {
	best := "the current best content"

	// Identical result.
	assert.False(t, isMaterial(best, best))
	// Differing only by trailing whitespace: cleanResult trims first, so the
	// comparison sees equal strings.
	assert.False(t, isMaterial(cleanResult(best+"\n   "), best))
	// Too short.
	assert.False(t, isMaterial("hi", best))
	assert.False(t, isMaterial("12345", best))
	// Empty.
	assert.False(t, isMaterial("", best))

	assert.True(t, isMaterial("a genuinely different result", best))
}

func TestRawOutputSuffix_AppendedToEveryStep(t *testing.T) {
	assert.True(t, strings.Contains(rawOutputSuffix, "code fences"))
	for _, p := range []Pipeline{Select("a.go"), Select("a.yaml"), Select("a.md")} {
		for _, step := range p.Steps {
			assert.NotEmpty(t, step.Instruction)
			assert.NotEmpty(t, step.Label)
		}
	}
}
