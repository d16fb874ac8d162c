package translator

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

// DefaultNLLBModel is the Wolof/French/English NLLB-200 checkpoint the
// inference server loads when none is configured.
const DefaultNLLBModel = "bilalfaye/nllb-200-distilled-600M-wo-fr-en"

// NLLBClient talks to a self-hosted NLLB inference server over HTTP.
type NLLBClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewNLLBClient creates a client for the inference server at baseURL.
func NewNLLBClient(baseURL, model string, timeout time.Duration) *NLLBClient {
	if baseURL == "" {
		baseURL = "http://localhost:8090"
	}
	if model == "" {
		model = DefaultNLLBModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NLLBClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *NLLBClient) Name() string {
	return "nllb"
}

func (c *NLLBClient) Translate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	payload := struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
		Model      string `json:"model,omitempty"`
	}{req.Text, req.SourceLang, req.TargetLang, c.model}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/translate", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("translator returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var nllbResp struct {
		TranslatedText string `json:"translated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&nllbResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Result{
		TranslatedText: nllbResp.TranslatedText,
		Model:          c.model,
		Latency:        time.Since(start),
	}, nil
}

func (c *NLLBClient) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("translator not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translator returned status %d", resp.StatusCode)
	}
	return nil
}
