package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"return-adjudicator/internal/redisclient"
	"return-adjudicator/internal/util"

	"go.uber.org/zap"
)

// ClassifierClient calls the external category classifier (typically backed
// by a language model) and memoizes its labels in Redis. Classification is
// deterministic per (description, taxonomy version), so cached labels stay
// valid until the graph version changes.
type ClassifierClient struct {
	url          string
	graphVersion string
	httpClient   *http.Client
	redis        *redisclient.Client
	logger       *zap.Logger
}

// NewClassifierClient creates a classifier client. An empty url configures
// pass-through mode: the item's own category hint is returned as the label
// and the resolver's taxonomy matching does the rest.
func NewClassifierClient(url, graphVersion string, redis *redisclient.Client) *ClassifierClient {
	return &ClassifierClient{
		url:          url,
		graphVersion: graphVersion,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		redis:        redis,
		logger:       util.GetLogger(),
	}
}

type classifyRequest struct {
	Description string `json:"description"`
}

type classifyResponse struct {
	Label string `json:"label"`
}

// Classify returns the category label for an item description. A transport
// failure is reported as an error; the engine downgrades it to an unresolved
// category rather than failing the adjudication.
func (c *ClassifierClient) Classify(ctx context.Context, description string) (string, error) {
	if c.url == "" {
		return description, nil
	}

	if label, err := c.redis.GetCategoryLabel(ctx, c.graphVersion, description); err == nil {
		util.ClassifierCacheHits.Inc()
		return label, nil
	} else if !redisclient.IsNotFound(err) {
		c.logger.Warn("Classifier cache read failed", zap.Error(err))
	}

	util.ClassifierRequestsTotal.Inc()

	body, err := json.Marshal(classifyRequest{Description: description})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.ClassifierFallbacksTotal.Inc()
		return "", fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		util.ClassifierFallbacksTotal.Inc()
		return "", fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		util.ClassifierFallbacksTotal.Inc()
		return "", fmt.Errorf("classifier response malformed: %w", err)
	}

	if err := c.redis.SetCategoryLabel(ctx, c.graphVersion, description, out.Label, time.Hour); err != nil {
		c.logger.Warn("Failed to cache classifier label", zap.Error(err))
	}

	return out.Label, nil
}
