package external

import (
	"context"
	"net/http"

	"trizzaone/internal/config"
	"trizzaone/internal/types"
)

// IntentSelection is the structured result of the remote natural-language
// endpoint: a label naming one of the supported query templates plus any
// arguments the template needs. The label is validated against the closed
// intent enumeration by the query engine; unknown labels fall back to the
// unsupported intent rather than being dispatched on the raw string.
type IntentSelection struct {
	Label string            `json:"label"`
	Args  map[string]string `json:"args,omitempty"`
}

// QueryClient calls the remote natural-language endpoint that maps free text
// to a query-template selection.
type QueryClient struct {
	base   *BaseClient
	url    string
	apiKey types.SecretString
}

// NewQueryClient creates a QueryClient from the query endpoint configuration.
func NewQueryClient(cfg config.QueryConfig, opts ...BaseClientOption) *QueryClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &QueryClient{
		base:   NewBaseClient(httpClient, "nl-query", DefaultRetryPolicy(), opts...),
		url:    cfg.URL,
		apiKey: cfg.APIKey,
	}
}

// SelectIntent submits the user's free text and returns the selected
// template label.
func (c *QueryClient) SelectIntent(ctx context.Context, text string) (*IntentSelection, error) {
	headers := map[string]string{}
	if key := c.apiKey.Unmask(); key != "" {
		headers["Authorization"] = "Bearer " + key
	}

	payload := map[string]string{"text": text}
	var sel IntentSelection
	if err := c.base.PostJSON(ctx, c.url, headers, payload, &sel, types.ErrCodeUpstreamQuery); err != nil {
		return nil, err
	}
	return &sel, nil
}
