package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceConfig contains configuration for the HuggingFace Inference API.
type HuggingFaceConfig struct {
	BaseURL string // e.g., "https://api-inference.huggingface.co"
	Model   string // e.g., "mistralai/Mistral-7B-Instruct-v0.2"
	Token   string
	Timeout time.Duration
	Options Options
}

// DefaultHuggingFaceConfig returns the hosted inference defaults.
func DefaultHuggingFaceConfig() HuggingFaceConfig {
	return HuggingFaceConfig{
		BaseURL: "https://api-inference.huggingface.co",
		Model:   "mistralai/Mistral-7B-Instruct-v0.2",
		Timeout: DefaultTimeout,
		Options: DefaultOptions(),
	}
}

// HuggingFaceClient calls the text-generation task of the Inference API.
type HuggingFaceClient struct {
	config     HuggingFaceConfig
	httpClient *http.Client
}

// NewHuggingFaceClient creates a new HuggingFace client.
func NewHuggingFaceClient(config HuggingFaceConfig) *HuggingFaceClient {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Options == (Options{}) {
		config.Options = DefaultOptions()
	}
	return &HuggingFaceClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TopP           float64 `json:"top_p,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// Generate implements Generator.
func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   c.config.Options.MaxTokens,
			Temperature:    c.config.Options.Temperature,
			TopP:           c.config.Options.TopP,
			ReturnFullText: false,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL(), bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call HuggingFace API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		var hfErr hfError
		_ = json.Unmarshal(body, &hfErr)
		return "", fmt.Errorf("HuggingFace model %s is loading (estimated %.0fs)", c.config.Model, hfErr.EstimatedTime)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HuggingFace API error (status %d): %s", resp.StatusCode, string(body))
	}

	var generations []hfGeneration
	if err := json.Unmarshal(body, &generations); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(generations) == 0 || strings.TrimSpace(generations[0].GeneratedText) == "" {
		return "", ErrEmptyCompletion
	}
	return generations[0].GeneratedText, nil
}

// Ping checks that the model endpoint answers.
func (c *HuggingFaceClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(), nil)
	if err != nil {
		return err
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HuggingFace not reachable at %s: %w", c.config.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HuggingFace returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *HuggingFaceClient) modelURL() string {
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/models/" + c.config.Model
}
