package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wareflow/ruleengine/internal/engine"
	"github.com/wareflow/ruleengine/internal/evaluation"
	"github.com/wareflow/ruleengine/internal/rule"
)

// Client is an HTTP client for the rule engine API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateResult mirrors the server's validate response.
type ValidateResult struct {
	Valid  bool                   `json:"valid"`
	Errors []rule.ValidationError `json:"errors,omitempty"`
}

// TestResult mirrors the server's single-rule test response.
type TestResult struct {
	RuleID  string `json:"ruleId"`
	Matched bool   `json:"matched"`
	Actions []struct {
		ActionID string `json:"actionId"`
		Status   string `json:"status"`
		Error    string `json:"error,omitempty"`
	} `json:"actions,omitempty"`
	EvaluatedAt string `json:"evaluatedAt"`
}

// ListRules retrieves all rules
func (c *Client) ListRules(ctx context.Context) ([]rule.Rule, error) {
	var result struct {
		Rules []rule.Rule `json:"rules"`
	}
	if err := c.do(ctx, "GET", "/v1/rules", nil, &result); err != nil {
		return nil, err
	}
	return result.Rules, nil
}

// GetRule retrieves a single rule by id
func (c *Client) GetRule(ctx context.Context, ruleID string) (*rule.Rule, error) {
	var doc rule.Rule
	if err := c.do(ctx, "GET", "/v1/rules/"+ruleID, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpsertRule creates or updates a rule
func (c *Client) UpsertRule(ctx context.Context, doc rule.Rule) error {
	return c.do(ctx, "PUT", "/v1/rules/"+doc.RuleID, doc, nil)
}

// DeleteRule deletes a rule
func (c *Client) DeleteRule(ctx context.Context, ruleID string) error {
	return c.do(ctx, "DELETE", "/v1/rules/"+ruleID, nil, nil)
}

// ValidateRule validates a rule document without storing it
func (c *Client) ValidateRule(ctx context.Context, doc rule.Rule) (*ValidateResult, error) {
	var result ValidateResult
	if err := c.do(ctx, "POST", "/v1/rules/validate", doc, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TestRule runs a stored rule against a context. When execute is true the
// rule's actions run as well.
func (c *Client) TestRule(ctx context.Context, ruleID string, evalCtx map[string]any, execute bool) (*TestResult, error) {
	body := map[string]any{"context": evalCtx, "execute": execute}
	var result TestResult
	if err := c.do(ctx, "POST", "/v1/rules/"+ruleID+"/test", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Trigger evaluates all enabled rules against a context
func (c *Client) Trigger(ctx context.Context, evalCtx engine.MapContext) (*evaluation.TriggerResponse, error) {
	body := map[string]any{"context": map[string]any(evalCtx)}
	var result evaluation.TriggerResponse
	if err := c.do(ctx, "POST", "/v1/trigger", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do performs an authenticated JSON request against the API.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		blob, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
