package pipeline

import (
	"path/filepath"
	"strings"
)

// Step is one immutable transformation applied to a file's content.
type Step struct {
	ID          string
	Label       string
	Instruction string
}

// Pipeline is a named, ordered sequence of steps.
type Pipeline struct {
	Name  string
	Steps []Step
}

var codePipeline = Pipeline{
	Name: "code",
	Steps: []Step{
		{
			ID:          "refactor",
			Label:       "refactor",
			Instruction: "You are a senior software engineer. Refactor the following source file for readability and maintainability without changing its behavior. Preserve the public API, imports, and overall structure unless a change is clearly safe.",
		},
		{
			ID:          "modernize",
			Label:       "modernize",
			Instruction: "You are a senior software engineer. Update the following source file to use current, idiomatic constructs of its language. Remove deprecated patterns. Do not change behavior.",
		},
		{
			ID:          "document",
			Label:       "document",
			Instruction: "You are a senior software engineer. Add or improve comments and doc strings in the following source file where they genuinely help a reader. Keep them short. Do not change any code.",
		},
	},
}

var configPipeline = Pipeline{
	Name: "config",
	Steps: []Step{
		{
			ID:          "normalize",
			Label:       "normalize",
			Instruction: "You are a build and configuration expert. Tidy the following configuration file: consistent ordering, consistent formatting, no duplicate keys. Do not add or remove settings, and do not change any values.",
		},
	},
}

var docsPipeline = Pipeline{
	Name: "docs",
	Steps: []Step{
		{
			ID:          "clarify",
			Label:       "clarify",
			Instruction: "You are a technical writer. Improve the clarity and structure of the following document. Keep the author's voice and all factual content.",
		},
		{
			ID:          "proofread",
			Label:       "proofread",
			Instruction: "You are a careful proofreader. Fix spelling, grammar, and punctuation in the following document. Change nothing else.",
		},
	},
}

var codeExtensions = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true,
	".tsx": true, ".java": true, ".rb": true, ".rs": true, ".c": true,
	".cc": true, ".cpp": true, ".h": true, ".hpp": true, ".cs": true,
	".php": true, ".swift": true, ".kt": true, ".sh": true,
}

var configExtensions = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true,
}

var docsExtensions = map[string]bool{
	".md": true, ".rst": true, ".txt": true,
}

// Select maps a path to exactly one pipeline by file extension. The first
// matching classifier wins; code is the fallback when none match.
func Select(path string) Pipeline {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case codeExtensions[ext]:
		return codePipeline
	case configExtensions[ext]:
		return configPipeline
	case docsExtensions[ext]:
		return docsPipeline
	default:
		return codePipeline
	}
}

// Classifiable reports whether path matches any of the three extension
// classifiers. The indexer uses this to filter the repository tree.
func Classifiable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return codeExtensions[ext] || configExtensions[ext] || docsExtensions[ext]
}
