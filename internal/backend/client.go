package backend

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

	"schemebot/internal/metrics"
	"schemebot/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

const (
	endpointSearch = "/search"
	endpointVerify = "/verify"
	endpointHealth = "/"

	defaultTimeout  = 30 * time.Second
	maxResponseSize = 4 << 20
)

// Client talks to the scheme backend. It is safe for concurrent use and its
// configuration is fixed after New.
type Client struct {
	baseURL    string
	topK       int
	httpClient *http.Client
	logger     logrus.FieldLogger
	metrics    *metrics.Metrics
}

func New(config *types.Config, logger logrus.FieldLogger, m *metrics.Metrics) (*Client, error) {
	base, err := url.Parse(config.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url must be http or https, got %q", config.BackendURL)
	}

	timeout := time.Duration(config.BackendTimeoutSec) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(base.String(), "/"),
		topK:    config.SearchTopK,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger.WithField("component", "backend"),
		metrics: m,
	}, nil
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type searchResponse struct {
	Status  string                `json:"status"`
	Results []types.SchemeSummary `json:"results"`
}

// Search asks the backend for schemes matching query. Results keep the order
// the backend ranked them in.
func (c *Client) Search(ctx context.Context, query string) (types.SearchOutcome, error) {
	body, err := c.do(ctx, http.MethodPost, endpointSearch, searchRequest{Query: query, TopK: c.topK}, searchSchema)
	if err != nil {
		return types.SearchOutcome{}, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.SearchOutcome{}, &contractError{endpoint: endpointSearch, problems: []string{err.Error()}}
	}

	outcome := types.SearchOutcome{Status: resp.Status}
	if !outcome.Matched() {
		return outcome, nil
	}

	outcome.Results = make([]types.SchemeSummary, 0, len(resp.Results))
	for _, r := range resp.Results {
		r.Score = types.ClampScore(r.Score)
		outcome.Results = append(outcome.Results, r)
	}

	return outcome, nil
}

type verifyRequest struct {
	SchemeName  string            `json:"scheme_name"`
	UserProfile types.UserProfile `json:"user_profile"`
}

type verifyResponse struct {
	Verdict       string               `json:"verdict"`
	Reasons       []string             `json:"reasons"`
	SchemeDetails *types.SchemeDetails `json:"scheme_details"`
}

func (c *Client) Verify(ctx context.Context, schemeName string, profile types.UserProfile) (*types.VerificationResult, error) {
	body, err := c.do(ctx, http.MethodPost, endpointVerify, verifyRequest{SchemeName: schemeName, UserProfile: profile}, verifySchema)
	if err != nil {
		return nil, err
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &contractError{endpoint: endpointVerify, problems: []string{err.Error()}}
	}

	verdict, ok := types.ParseVerdict(resp.Verdict)
	if !ok {
		return nil, &contractError{endpoint: endpointVerify, problems: []string{fmt.Sprintf("unknown verdict %q", resp.Verdict)}}
	}

	result := &types.VerificationResult{
		Verdict: verdict,
		Reasons: append([]string{}, resp.Reasons...),
	}

	// Some backends attach details to every verdict; they only mean
	// something when the applicant qualifies.
	if verdict == types.VerdictEligible && resp.SchemeDetails != nil {
		details := *resp.SchemeDetails
		result.Details = &details
	}

	return result, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health probes the backend root and returns the status it reports.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, endpointHealth, nil, healthSchema)
	if err != nil {
		return "", err
	}

	var resp healthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &contractError{endpoint: endpointHealth, problems: []string{err.Error()}}
	}

	return resp.Status, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any, schema *gojsonschema.Schema) ([]byte, error) {
	started := time.Now()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveBackendRequest(endpoint, "transport_error", started)
		return nil, fmt.Errorf("failed to call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.metrics.ObserveBackendRequest(endpoint, "transport_error", started)
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveBackendRequest(endpoint, "bad_status", started)
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Detail: errorDetail(body)}
	}

	if err := validate(endpoint, schema, body); err != nil {
		c.metrics.ObserveBackendRequest(endpoint, "invalid_response", started)
		return nil, err
	}

	c.metrics.ObserveBackendRequest(endpoint, "success", started)

	c.logger.WithFields(logrus.Fields{
		"endpoint":    endpoint,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("backend request")

	return body, nil
}

// errorDetail pulls the message out of a FastAPI style {"detail": ...} body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Detail == nil {
		return truncateDetail(strings.TrimSpace(string(body)))
	}

	if s, ok := payload.Detail.(string); ok {
		return truncateDetail(s)
	}

	data, _ := json.Marshal(payload.Detail)
	return truncateDetail(string(data))
}

const maxDetailRunes = 256

// truncateDetail caps s at maxDetailRunes without splitting a character.
func truncateDetail(s string) string {
	r := []rune(strings.ToValidUTF8(s, "\uFFFD"))
	if len(r) > maxDetailRunes {
		r = r[:maxDetailRunes]
	}
	return string(r)
}
