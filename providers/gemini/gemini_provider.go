package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"groom/providers/contracts"
	gemini_models "groom/providers/gemini/models"
	"groom/providers/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// FallbackModel is the designated stable model used when the selected
	// model is no longer served by the endpoint.
	FallbackModel = "gemini-2.0-flash"

	defaultMaxAttempts = 5
	defaultBackoffBase = time.Second
	defaultTemperature = 0.2
)

// GeminiConfig configures the generate-content provider.
type GeminiConfig struct {
	BaseURL   string
	APIKey    string
	Selection *models.ModelSelection

	// OnFallback is invoked once when the selected model 404s and routing
	// demotes it to FallbackModel. May be nil.
	OnFallback func(from, to string)

	// BackoffBase scales the exponential retry delay (base << attempt).
	// Zero means one second.
	BackoffBase time.Duration
	MaxAttempts int
	HTTPClient  *http.Client
}

// GeminiProvider implements contracts.ITextGenerator against the
// generate-content endpoint, with tiered-model fallback and exponential
// backoff on transient failures.
type GeminiProvider struct {
	baseURL     string
	apiKey      string
	selection   *models.ModelSelection
	onFallback  func(from, to string)
	backoffBase time.Duration
	maxAttempts int
	client      *http.Client
}

// NewGeminiProvider initializes a new generate-content provider.
func NewGeminiProvider(config *GeminiConfig) contracts.ITextGenerator {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoffBase := config.BackoffBase
	if backoffBase == 0 {
		backoffBase = defaultBackoffBase
	}
	maxAttempts := config.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &GeminiProvider{
		baseURL:     baseURL,
		apiKey:      config.APIKey,
		selection:   config.Selection,
		onFallback:  config.OnFallback,
		backoffBase: backoffBase,
		maxAttempts: maxAttempts,
		client:      client,
	}
}

// Generate sends prompt and systemInstruction to the currently selected model
// and returns the completed text. A not-found response for a non-fallback
// model reroutes the call to FallbackModel once, with the retry counter reset.
// Other failures retry with delays backoffBase*2^attempt up to MaxAttempts
// before surfacing an exhaustion error.
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, systemInstruction string) (string, error) {
	return p.generate(ctx, prompt, systemInstruction, 0, false)
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string, systemInstruction string, attempt int, rerouted bool) (string, error) {
	model := p.selection.Get()

	text, status, err := p.doRequest(ctx, model, prompt, systemInstruction)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	// Model obsolescence: reroute once to the stable fallback and start over.
	if status == http.StatusNotFound && model != FallbackModel && !rerouted {
		p.selection.Set(FallbackModel)
		if p.onFallback != nil {
			p.onFallback(model, FallbackModel)
		}
		return p.generate(ctx, prompt, systemInstruction, 0, true)
	}

	if attempt >= p.maxAttempts {
		return "", fmt.Errorf("AI call exhausted after %d retries (last status %d): %w", p.maxAttempts, status, err)
	}

	delay := p.backoffBase << attempt
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(delay):
	}
	return p.generate(ctx, prompt, systemInstruction, attempt+1, rerouted)
}

// doRequest performs a single generate-content call. The status is zero for
// network-level failures.
func (p *GeminiProvider) doRequest(ctx context.Context, model string, prompt string, systemInstruction string) (string, int, error) {
	reqBody := gemini_models.GenerateContentRequest{
		Contents: []gemini_models.Content{
			{Role: "user", Parts: []gemini_models.Part{{Text: prompt}}},
		},
		GenerationConfig: &gemini_models.GenerationConfig{
			Temperature:      defaultTemperature,
			ResponseMimeType: "text/plain",
		},
	}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &gemini_models.Content{
			Parts: []gemini_models.Part{{Text: systemInstruction}},
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, fmt.Errorf("error marshalling request body: %v", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, url.PathEscape(model))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", 0, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	// The credential travels in a header, never in the URL, so it cannot leak
	// through request logs or caches.
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiError models.AIError
		if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error.Message != "" {
			return "", resp.StatusCode, fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)
		}
		return "", resp.StatusCode, fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)
	}

	var response gemini_models.GenerateContentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", resp.StatusCode, fmt.Errorf("error unmarshalling response: %v", err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", resp.StatusCode, fmt.Errorf("response contained no candidates")
	}
	return response.Candidates[0].Content.Parts[0].Text, resp.StatusCode, nil
}
