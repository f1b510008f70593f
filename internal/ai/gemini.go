package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cigdeemtok/AILinter/internal/domain"
)

const quotaWarning = "Model API quota exhausted. Please wait a few minutes and resubmit."

type GeminiClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

// GeminiClient analyzes code through the Generative Language API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
}

func NewGeminiClient(config GeminiClientConfig) *GeminiClient {
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = "gemini-1.5-flash"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}

	return &GeminiClient{
		apiKey:     strings.TrimSpace(config.APIKey),
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		model:      config.Model,
		timeout:    config.Timeout,
		maxRetries: config.MaxRetries,
		httpClient: config.HTTPClient,
	}
}

func (c *GeminiClient) Available() bool {
	return c.apiKey != ""
}

// Analyze builds the review prompt, calls the model, and parses findings.
// Malformed model output degrades to empty findings; a quota or rate-limit
// response degrades to a warning-only result. Transport failures and
// timeouts surface as errors and become terminal failed jobs.
func (c *GeminiClient) Analyze(
	ctx context.Context,
	code string,
	language domain.Language,
	fileName string,
) (domain.Findings, error) {
	if !c.Available() {
		return domain.Findings{}, ErrAnalyzerUnavailable
	}

	prompt := buildAnalysisPrompt(code, language, fileName)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		if isQuotaError(err) {
			return quotaFindings(), nil
		}
		return domain.Findings{}, err
	}

	return extractFindings(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, callErr := c.callGenerateContent(ctx, encoded)
		if callErr == nil {
			return text, nil
		}
		lastErr = callErr

		if !isRetryableError(callErr) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(350*(attempt+1)) * time.Millisecond
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown gemini error")
	}
	return "", lastErr
}

func (c *GeminiClient) callGenerateContent(ctx context.Context, payload []byte) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpRequest, err := http.NewRequestWithContext(timeoutCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("x-goog-api-key", c.apiKey)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("gemini timeout: %w", err)
		}
		return "", fmt.Errorf("gemini transport error: %w", err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini body: %w", err)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		message := strings.TrimSpace(string(body))
		if len(message) > 700 {
			message = message[:700]
		}
		return "", &HTTPError{StatusCode: httpResponse.StatusCode, Message: message}
	}

	var raw geminiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	text := raw.text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini response without text output")
	}
	return text, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r geminiResponse) text() string {
	fragments := make([]string, 0)
	for _, candidate := range r.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) == "" {
				continue
			}
			fragments = append(fragments, part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(fragments, "\n"))
}

// extractFindings pulls the JSON object out of the model's reply. Replies
// wrapped in prose or code fences still parse; anything unparseable
// degrades to empty findings rather than failing the job.
func extractFindings(text string) domain.Findings {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return domain.EmptyFindings()
	}

	var findings domain.Findings
	if err := json.Unmarshal([]byte(text[start:end+1]), &findings); err != nil {
		return domain.EmptyFindings()
	}
	return findings.Normalize()
}

func quotaFindings() domain.Findings {
	findings := domain.EmptyFindings()
	findings.Errors = []string{quotaWarning}
	return findings
}

type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Message)
}

func isQuotaError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "quota") || strings.Contains(message, "rate limit")
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}
