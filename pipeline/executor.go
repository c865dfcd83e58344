package pipeline

import (
	"context"
	"fmt"
	"strings"

	"groom/githost"
	"groom/providers/contracts"
)

// rawOutputSuffix is appended to every step instruction so the model returns
// file content and nothing else. The fence stripping in cleanResult covers
// models that ignore it anyway.
const rawOutputSuffix = "\n\nReturn only the complete, raw file content. Do not wrap the output in markdown code fences. Do not add commentary or explanations."

// minAcceptedLength rejects trivial results: a step output this short can
// never be a material improvement of a real file.
const minAcceptedLength = 5

// OutcomeKind classifies one file's processing result.
type OutcomeKind int

const (
	Mutated OutcomeKind = iota
	Skipped
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Mutated:
		return "mutated"
	case Skipped:
		return "skipped"
	default:
		return "error"
	}
}

// Outcome is the discriminated result of running one file through its
// pipeline. Faults never cross this boundary as raw errors.
type Outcome struct {
	Kind          OutcomeKind
	Message       string
	StepsAccepted int
}

// ContentGateway is the slice of the repository gateway the executor needs.
type ContentGateway interface {
	FetchFile(ctx context.Context, path string) (githost.RemoteFile, error)
	UpdateFile(ctx context.Context, path string, content string, sha string, message string) error
}

// Executor runs one file through its selected pipeline, accumulating the
// highest-fidelity result, and writes back if any step materially improved
// the content.
type Executor struct {
	gateway   ContentGateway
	generator contracts.ITextGenerator
}

// NewExecutor creates an executor over the given gateway and generator.
func NewExecutor(gateway ContentGateway, generator contracts.ITextGenerator) *Executor {
	return &Executor{gateway: gateway, generator: generator}
}

// Run processes a single file and reports Mutated, Skipped, or Failed.
func (e *Executor) Run(ctx context.Context, path string) Outcome {
	file, err := e.gateway.FetchFile(ctx, path)
	if err != nil {
		return Outcome{Kind: Failed, Message: err.Error()}
	}

	selected := Select(path)
	best := file.Content
	accepted := 0
	var acceptedLabels []string

	for _, step := range selected.Steps {
		systemInstruction := step.Instruction + rawOutputSuffix
		prompt := buildPrompt(path, best)

		result, err := e.generator.Generate(ctx, prompt, systemInstruction)
		if err != nil {
			return Outcome{
				Kind:          Failed,
				Message:       fmt.Sprintf("step '%s' on '%s': %v", step.ID, path, err),
				StepsAccepted: accepted,
			}
		}

		result = cleanResult(result)
		if isMaterial(result, best) {
			best = result
			accepted++
			acceptedLabels = append(acceptedLabels, step.Label)
		}
	}

	if accepted == 0 {
		return Outcome{Kind: Skipped, Message: fmt.Sprintf("no material improvement for '%s'", path)}
	}

	message := commitMessage(path, acceptedLabels)
	if err := e.gateway.UpdateFile(ctx, path, best, file.SHA, message); err != nil {
		return Outcome{Kind: Failed, Message: err.Error(), StepsAccepted: accepted}
	}
	return Outcome{
		Kind:          Mutated,
		Message:       fmt.Sprintf("optimized '%s' (%d steps)", path, accepted),
		StepsAccepted: accepted,
	}
}

func buildPrompt(path string, content string) string {
	return fmt.Sprintf("## File: %s\n\nHere is the current content of the file:\n\n%s", path, content)
}

// cleanResult strips a leading fenced-code-block opener line and a trailing
// closer line if present, then trims surrounding whitespace.
func cleanResult(result string) string {
	trimmed := strings.TrimSpace(result)
	lines := strings.Split(trimmed, "\n")

	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// isMaterial reports whether result should replace best: non-empty, actually
// different, and above the triviality threshold.
func isMaterial(result string, best string) bool {
	if result == "" || len(result) <= minAcceptedLength {
		return false
	}
	return result != strings.TrimSpace(best)
}

func commitMessage(path string, labels []string) string {
	return fmt.Sprintf("Groom %s (%s)", path, strings.Join(labels, ", "))
}
