package contracts

import (
	"context"
)

// ITextGenerator is the interface for sending one prompt to a text-generation
// endpoint and receiving the completed text back.
type ITextGenerator interface {
	Generate(ctx context.Context, prompt string, systemInstruction string) (string, error)
}
