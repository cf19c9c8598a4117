package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
)

type Client struct {
	baseURL    string
	dataset    string
	apiVersion string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new CMS content API client
func NewClient(cfg config.CMSConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		dataset:    cfg.Dataset,
		apiVersion: cfg.APIVersion,
		token:      cfg.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// QueryResponse represents a content API query response
type QueryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     float64         `json:"ms"`
}

// Mutation is a single entry in a mutation request. Exactly one of the
// fields is set per entry (create, createIfNotExists, patch).
type Mutation struct {
	Create            map[string]interface{} `json:"create,omitempty"`
	CreateIfNotExists map[string]interface{} `json:"createIfNotExists,omitempty"`
	Patch             *Patch                 `json:"patch,omitempty"`
}

// Patch modifies an existing document by id
type Patch struct {
	ID  string                 `json:"id"`
	Set map[string]interface{} `json:"set,omitempty"`
	Dec map[string]interface{} `json:"dec,omitempty"`
	Inc map[string]interface{} `json:"inc,omitempty"`
}

// MutateResponse represents a content API mutation response
type MutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

type apiError struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
}

// Query executes a GROQ query with parameters and returns the raw result.
// Parameter values are JSON-encoded and passed as $-prefixed URL params.
func (c *Client) Query(ctx context.Context, groq string, params map[string]interface{}) (json.RawMessage, error) {
	u, err := url.Parse(fmt.Sprintf(
		"%s/v%s/data/query/%s",
		c.baseURL, c.apiVersion, c.dataset,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build query URL: %w", err)
	}

	q := u.Query()
	q.Set("query", groq)
	for key, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query param %s: %w", key, err)
		}
		q.Set("$"+key, string(encoded))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("CMS query error: %s", apiErr.Error.Description)
		}
		return nil, fmt.Errorf("CMS API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var queryResp QueryResponse
	if err := json.Unmarshal(body, &queryResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	return queryResp.Result, nil
}

// Mutate executes a mutation transaction against the content API
func (c *Client) Mutate(ctx context.Context, mutations []Mutation) (*MutateResponse, error) {
	if c.token == "" {
		return nil, fmt.Errorf("CMS client not configured for mutations: token required")
	}

	endpoint := fmt.Sprintf(
		"%s/v%s/data/mutate/%s?returnIds=true",
		c.baseURL, c.apiVersion, c.dataset,
	)

	reqBody := struct {
		Mutations []Mutation `json:"mutations"`
	}{Mutations: mutations}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mutations: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute mutation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("CMS mutation failed",
			zap.Int("status", resp.StatusCode),
			zap.Int("mutation_count", len(mutations)),
		)
		return nil, fmt.Errorf("CMS API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var mutateResp MutateResponse
	if err := json.Unmarshal(body, &mutateResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	return &mutateResp, nil
}
