package graphapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeClassification(t *testing.T) {
	tests := []struct {
		code int
		want Outcome
	}{
		{200, OutcomeSuccess},
		{201, OutcomeSuccess},
		{404, OutcomeNotFound},
		{400, OutcomeClientError},
		{422, OutcomeClientError},
		{500, OutcomeServerError},
		{503, OutcomeServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyStatus(tt.code), "status %d", tt.code)
	}
}

func TestOutcomeRetryable(t *testing.T) {
	assert.False(t, OutcomeSuccess.Retryable())
	assert.False(t, OutcomeNotFound.Retryable())
	assert.False(t, OutcomeClientError.Retryable())
	assert.True(t, OutcomeServerError.Retryable())
	assert.True(t, OutcomeNetworkError.Retryable())
}

func TestMergeEntitiesSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graph/entities/merge", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "entities merged",
			"data":    map[string]any{"relationships_transferred": 7},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	result, err := c.MergeEntities(context.Background(), []string{"cv_001"}, "CV_001")
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "entities merged", result.Message)
	assert.Equal(t, 7, result.RelationshipsTransferred)

	assert.Equal(t, []any{"cv_001"}, captured["entities_to_change"])
	assert.Equal(t, "CV_001", captured["entity_to_change_into"])
}

func TestMergeEntitiesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "entity not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	result, err := c.MergeEntities(context.Background(), []string{"gone"}, "CV_001")
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.False(t, result.Outcome.Retryable())
}

func TestMergeEntitiesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	result, err := c.MergeEntities(context.Background(), []string{"a"}, "b")
	require.Error(t, err)
	assert.Equal(t, OutcomeServerError, result.Outcome)
	assert.True(t, result.Outcome.Retryable())
}

func TestMergeEntitiesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, time.Second, nil)
	result, err := c.MergeEntities(context.Background(), []string{"a"}, "b")
	require.Error(t, err)
	assert.Equal(t, OutcomeNetworkError, result.Outcome)
	assert.True(t, result.Outcome.Retryable())
}

func TestEditEntityRequestShape(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graph/entity/edit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{"message": "renamed"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	result, err := c.EditEntity(context.Background(), "software_engineer", "Software Engineer", "PROFILE")
	require.NoError(t, err)
	assert.Equal(t, "renamed", result.Message)

	assert.Equal(t, "software_engineer", captured["entity_name"])
	assert.Equal(t, true, captured["allow_rename"])
	assert.Equal(t, false, captured["allow_merge"])
	updated, ok := captured["updated_data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Software Engineer", updated["entity_name"])
	assert.Equal(t, "PROFILE", updated["entity_type"])
}

func TestDeleteEntity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/documents/delete_entity", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body["entity_name"] {
		case "gone":
			w.WriteHeader(http.StatusNotFound)
		case "bad":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)

	outcome, err := c.DeleteEntity(context.Background(), "CV_001")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)

	outcome, err = c.DeleteEntity(context.Background(), "gone")
	require.Error(t, err)
	assert.Equal(t, OutcomeNotFound, outcome)

	outcome, err = c.DeleteEntity(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, OutcomeClientError, outcome)
}

func TestBaseURLTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/delete_entity", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, nil)
	outcome, err := c.DeleteEntity(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
}
