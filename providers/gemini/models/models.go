package models

// Part is a single text segment of a content block.
type Part struct {
	Text string `json:"text"`
}

// Content is one message in a generate-content exchange.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig carries sampling parameters for a request.
type GenerationConfig struct {
	Temperature      float32 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

// GenerateContentRequest is the request body for the generate-content endpoint.
type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate is one completion returned by the endpoint.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// GenerateContentResponse is the success body for the generate-content endpoint.
type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}
