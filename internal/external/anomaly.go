package external

import (
	"context"
	"net/http"

	"trizzaone/internal/config"
	"trizzaone/internal/types"
)

// AnomalyClient calls the remote anomaly classifier. It satisfies the
// detector's RemoteClassifier contract.
type AnomalyClient struct {
	base   *BaseClient
	url    string
	apiKey types.SecretString
}

// NewAnomalyClient creates an AnomalyClient from the anomaly endpoint
// configuration.
func NewAnomalyClient(cfg config.AnomalyConfig, opts ...BaseClientOption) *AnomalyClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &AnomalyClient{
		base:   NewBaseClient(httpClient, "anomaly-classifier", DefaultRetryPolicy(), opts...),
		url:    cfg.URL,
		apiKey: cfg.APIKey,
	}
}

// Classify submits one observation and returns the remote classification.
func (c *AnomalyClient) Classify(ctx context.Context, req types.AnomalyRequest) (*types.AnomalyResponse, error) {
	headers := map[string]string{}
	if key := c.apiKey.Unmask(); key != "" {
		headers["X-Api-Key"] = key
	}

	var resp types.AnomalyResponse
	if err := c.base.PostJSON(ctx, c.url, headers, req, &resp, types.ErrCodeUpstreamAnomaly); err != nil {
		return nil, err
	}
	return &resp, nil
}
