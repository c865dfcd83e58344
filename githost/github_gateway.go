package githost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"groom/transcode"
)

const defaultBaseURL = "https://api.github.com"

// RemoteFile is one file's decoded content plus the revision token required
// for a conditional write back.
type RemoteFile struct {
	Content string
	SHA     string
}

// TreeEntry is one entry of a recursive repository tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size"`
}

// GatewayConfig configures a repository content gateway.
type GatewayConfig struct {
	BaseURL    string
	Repository string // "owner/name"
	Token      string

	// Warn receives degradation notices (e.g. undecodable content). May be nil.
	Warn func(message string)

	HTTPClient *http.Client
}

// Gateway reads and conditionally writes single files of one remote
// repository through the code host's contents API.
type Gateway struct {
	baseURL    string
	repository string
	token      string
	warn       func(string)
	client     *http.Client
}

// NewGateway initializes a gateway for the given repository coordinates.
func NewGateway(config *GatewayConfig) (*Gateway, error) {
	if config.Repository == "" || !strings.Contains(config.Repository, "/") {
		return nil, fmt.Errorf("invalid repository coordinates %q, expected owner/name", config.Repository)
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Gateway{
		baseURL:    baseURL,
		repository: config.Repository,
		token:      config.Token,
		warn:       config.Warn,
		client:     client,
	}, nil
}

// FetchFile reads the current content and revision token of one file.
func (g *Gateway) FetchFile(ctx context.Context, path string) (RemoteFile, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", g.baseURL, g.repository, escapePath(path))

	body, status, err := g.do(ctx, "GET", endpoint, nil)
	if err != nil {
		return RemoteFile{}, err
	}
	if status < 200 || status >= 300 {
		return RemoteFile{}, fmt.Errorf("access error: fetching '%s' failed with status code '%d'", path, status)
	}

	var payload struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return RemoteFile{}, fmt.Errorf("error unmarshalling contents response: %v", err)
	}

	decoded := transcode.Decode(payload.Content)
	if decoded == "" && payload.Content != "" && g.warn != nil {
		g.warn(fmt.Sprintf("content of '%s' could not be decoded, treating as empty", path))
	}
	return RemoteFile{Content: decoded, SHA: payload.SHA}, nil
}

// UpdateFile writes new content for path, conditioned on sha still being the
// file's current revision. A stale sha is rejected by the host and surfaces
// as an error here; the caller treats that as terminal for this file.
func (g *Gateway) UpdateFile(ctx context.Context, path string, content string, sha string, message string) error {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", g.baseURL, g.repository, escapePath(path))

	reqBody := map[string]string{
		"message": message,
		"content": transcode.Encode(content),
		"sha":     sha,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("error marshalling update body: %v", err)
	}

	_, status, err := g.do(ctx, "PUT", endpoint, jsonData)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("write to '%s' failed with status code '%d'", path, status)
	}
	return nil
}

// DefaultBranch resolves the repository's default branch name.
func (g *Gateway) DefaultBranch(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s", g.baseURL, g.repository)

	body, status, err := g.do(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("access error: repository metadata failed with status code '%d'", status)
	}

	var payload struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("error unmarshalling repository metadata: %v", err)
	}
	return payload.DefaultBranch, nil
}

// Tree returns the full recursive file listing of branch.
func (g *Gateway) Tree(ctx context.Context, branch string) ([]TreeEntry, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", g.baseURL, g.repository, url.PathEscape(branch))

	body, status, err := g.do(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("access error: tree listing failed with status code '%d'", status)
	}

	var payload struct {
		Tree []TreeEntry `json:"tree"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("error unmarshalling tree response: %v", err)
	}
	return payload.Tree, nil
}

func (g *Gateway) do(ctx context.Context, method string, endpoint string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response: %v", err)
	}
	return respBody, resp.StatusCode, nil
}

// escapePath percent-encodes each path segment individually so literal '/'
// separators survive.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
