// File: internal/runtime/client.go
package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"vulnserve/internal/attribution"
	"vulnserve/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the inference runtime sidecar over HTTP/JSON.
// Transport failures and 5xx responses are retried with jittered
// exponential backoff; 4xx responses are surfaced immediately.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewClient builds a sidecar client from configuration.
func NewClient(cfg config.RuntimeConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryBaseDelay,
		logger:      logger.Named("runtime_client"),
	}
}

// Healthy probes the sidecar's health endpoint once, without retries.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

type tokenizeRequest struct {
	Code []string `json:"code"`
}

type tokenizeResponse struct {
	InputIDs [][]int    `json:"input_ids"`
	Tokens   [][]string `json:"tokens"`
}

// Tokenize converts raw source strings into unframed sub-word ids and their
// raw display tokens. No special tokens, truncation, or padding are applied;
// framing is the caller's job.
func (c *Client) Tokenize(ctx context.Context, code []string) ([][]int, [][]string, error) {
	var out tokenizeResponse
	if err := c.post(ctx, "/v1/tokenize", tokenizeRequest{Code: code}, &out); err != nil {
		return nil, nil, err
	}
	if len(out.InputIDs) != len(code) || len(out.Tokens) != len(code) {
		return nil, nil, fmt.Errorf("runtime: tokenize returned %d/%d batches for %d inputs",
			len(out.InputIDs), len(out.Tokens), len(code))
	}
	return out.InputIDs, out.Tokens, nil
}

type classifyRequest struct {
	Provider Provider `json:"provider"`
	InputIDs [][]int  `json:"input_ids"`
}

type classifyResponse struct {
	Probs      [][]float64          `json:"probs"`
	Attentions []attribution.Tensor `json:"attentions"`
}

// Classify runs the function-level vulnerability model. It returns one
// probability vector and one attention tensor per input, in input order.
func (c *Client) Classify(ctx context.Context, provider Provider, ids [][]int) ([][]float64, []attribution.Tensor, error) {
	var out classifyResponse
	if err := c.post(ctx, "/v1/models/line/classify", classifyRequest{Provider: provider, InputIDs: ids}, &out); err != nil {
		return nil, nil, err
	}
	if len(out.Probs) != len(ids) || len(out.Attentions) != len(ids) {
		return nil, nil, fmt.Errorf("runtime: classify returned %d probs and %d tensors for %d inputs",
			len(out.Probs), len(out.Attentions), len(ids))
	}
	return out.Probs, out.Attentions, nil
}

type cweResponse struct {
	CWEIDProbs   [][]float64 `json:"cwe_id_probs"`
	CWETypeProbs [][]float64 `json:"cwe_type_probs"`
}

// ClassifyCWE runs the CWE model, returning per-input probability vectors
// over CWE-ID classes and over CWE abstract-type classes.
func (c *Client) ClassifyCWE(ctx context.Context, provider Provider, ids [][]int) ([][]float64, [][]float64, error) {
	var out cweResponse
	if err := c.post(ctx, "/v1/models/cwe/classify", classifyRequest{Provider: provider, InputIDs: ids}, &out); err != nil {
		return nil, nil, err
	}
	if len(out.CWEIDProbs) != len(ids) || len(out.CWETypeProbs) != len(ids) {
		return nil, nil, fmt.Errorf("runtime: cwe returned %d/%d batches for %d inputs",
			len(out.CWEIDProbs), len(out.CWETypeProbs), len(ids))
	}
	return out.CWEIDProbs, out.CWETypeProbs, nil
}

type severityResponse struct {
	Scores []float64 `json:"scores"`
}

// ScoreSeverity runs the CVSS regression model, one score per input.
func (c *Client) ScoreSeverity(ctx context.Context, provider Provider, ids [][]int) ([]float64, error) {
	var out severityResponse
	if err := c.post(ctx, "/v1/models/sev/score", classifyRequest{Provider: provider, InputIDs: ids}, &out); err != nil {
		return nil, err
	}
	if len(out.Scores) != len(ids) {
		return nil, fmt.Errorf("runtime: severity returned %d scores for %d inputs", len(out.Scores), len(ids))
	}
	return out.Scores, nil
}

type generateRequest struct {
	Provider     Provider `json:"provider"`
	InputIDs     [][]int  `json:"input_ids"`
	MaxNewTokens int      `json:"max_new_tokens"`
}

type generateResponse struct {
	Repairs []string `json:"repairs"`
}

// Generate runs the seq2seq repair model, returning raw decoded text per
// input. Special-token cleanup is the caller's job.
func (c *Client) Generate(ctx context.Context, provider Provider, ids [][]int, maxNewTokens int) ([]string, error) {
	var out generateResponse
	req := generateRequest{Provider: provider, InputIDs: ids, MaxNewTokens: maxNewTokens}
	if err := c.post(ctx, "/v1/models/repair/generate", req, &out); err != nil {
		return nil, err
	}
	if len(out.Repairs) != len(ids) {
		return nil, fmt.Errorf("runtime: generate returned %d repairs for %d inputs", len(out.Repairs), len(ids))
	}
	return out.Repairs, nil
}

// post sends one JSON request and decodes the JSON response, retrying
// transient failures.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("runtime: encode %s request: %w", path, err)
	}

	return retry(ctx, c.maxAttempts, c.retryDelay, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return false, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("runtime request failed", zap.String("path", path), zap.Error(err))
			return true, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			c.logger.Warn("runtime returned server error",
				zap.String("path", path), zap.Int("status", resp.StatusCode))
			return true, fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return false, fmt.Errorf("runtime: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("runtime: decode %s response: %w", path, err)
		}
		return false, nil
	})
}
