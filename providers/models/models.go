package models

import (
	"sync"
)

// AIError is the error envelope returned by the inference endpoint.
type AIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ModelSelection holds the currently selected model identifier. The provider
// reads it on every attempt and rewrites it when fallback routing demotes the
// preferred model, so callers observe the change on their next call.
type ModelSelection struct {
	mu    sync.RWMutex
	model string
}

// NewModelSelection creates a selection initialized to model.
func NewModelSelection(model string) *ModelSelection {
	return &ModelSelection{model: model}
}

func (ms *ModelSelection) Get() string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.model
}

func (ms *ModelSelection) Set(model string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.model = model
}
