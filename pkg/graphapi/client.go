package graphapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// API is the mutation surface of the remote graph service. The executor and
// the deleter depend on this interface so tests can substitute fakes.
type API interface {
	MergeEntities(ctx context.Context, entitiesToChange []string, entityToChangeInto string) (*MergeResult, error)
	EditEntity(ctx context.Context, entityName, newName, entityType string) (*EditResult, error)
	DeleteEntity(ctx context.Context, entityName string) (Outcome, error)
}

// MergeResult is the classified response of a merge call.
type MergeResult struct {
	Outcome                  Outcome
	Message                  string
	RelationshipsTransferred int
}

// EditResult is the classified response of an entity edit call.
type EditResult struct {
	Outcome Outcome
	Message string
}

// Client talks to the graph service's HTTP API. One Client (and one
// underlying http.Client) serves an entire run.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an API client for the given base URL. A zero timeout
// defaults to 30 seconds.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type mergeRequest struct {
	EntitiesToChange   []string `json:"entities_to_change"`
	EntityToChangeInto string   `json:"entity_to_change_into"`
}

type editRequest struct {
	EntityName  string         `json:"entity_name"`
	UpdatedData map[string]any `json:"updated_data"`
	AllowRename bool           `json:"allow_rename"`
	AllowMerge  bool           `json:"allow_merge"`
}

type deleteRequest struct {
	EntityName string `json:"entity_name"`
}

type apiResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Data    struct {
		RelationshipsTransferred int `json:"relationships_transferred"`
	} `json:"data"`
}

// MergeEntities merges the given entities into the surviving one,
// transferring their relationships. The returned result is always non-nil;
// for non-success outcomes the error carries the same information so callers
// can wrap or log it.
func (c *Client) MergeEntities(ctx context.Context, entitiesToChange []string, entityToChangeInto string) (*MergeResult, error) {
	body := mergeRequest{
		EntitiesToChange:   entitiesToChange,
		EntityToChangeInto: entityToChangeInto,
	}

	resp, outcome, err := c.do(ctx, http.MethodPost, "/graph/entities/merge", body)
	result := &MergeResult{Outcome: outcome}
	if resp != nil {
		result.Message = resp.Message
		result.RelationshipsTransferred = resp.Data.RelationshipsTransferred
	}
	if err != nil {
		result.Message = err.Error()
		return result, err
	}
	if result.Message == "" {
		result.Message = "Success"
	}
	return result, nil
}

// EditEntity renames and retypes an entity in place. Renames are allowed;
// the service must not silently merge into an existing entity of the new
// name, so allow_merge stays false.
func (c *Client) EditEntity(ctx context.Context, entityName, newName, entityType string) (*EditResult, error) {
	body := editRequest{
		EntityName: entityName,
		UpdatedData: map[string]any{
			"entity_name": newName,
			"entity_type": entityType,
		},
		AllowRename: true,
		AllowMerge:  false,
	}

	resp, outcome, err := c.do(ctx, http.MethodPost, "/graph/entity/edit", body)
	result := &EditResult{Outcome: outcome}
	if resp != nil {
		result.Message = resp.Message
	}
	if err != nil {
		result.Message = err.Error()
		return result, err
	}
	if result.Message == "" {
		result.Message = "Updated"
	}
	return result, nil
}

// DeleteEntity removes an entity and its relationships. The outcome is
// always classified even when err is non-nil.
func (c *Client) DeleteEntity(ctx context.Context, entityName string) (Outcome, error) {
	_, outcome, err := c.do(ctx, http.MethodDelete, "/documents/delete_entity", deleteRequest{EntityName: entityName})
	return outcome, err
}

// do issues one JSON request and classifies the response. It returns the
// parsed body when one was received, the outcome, and a non-nil error for
// every outcome other than success.
func (c *Client) do(ctx context.Context, method, path string, body any) (*apiResponse, Outcome, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, OutcomeClientError, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, OutcomeClientError, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, OutcomeNetworkError, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, OutcomeNetworkError, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	var resp apiResponse
	// Bodies are best-effort; classification comes from the status code.
	_ = json.Unmarshal(raw, &resp)

	outcome := classifyStatus(httpResp.StatusCode)
	if outcome != OutcomeSuccess {
		c.logger.Debug("graph API call failed",
			"path", path,
			"status", httpResp.StatusCode,
			"outcome", string(outcome))
		msg := resp.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &resp, outcome, fmt.Errorf("API returned status %d: %s", httpResp.StatusCode, msg)
	}

	return &resp, OutcomeSuccess, nil
}
