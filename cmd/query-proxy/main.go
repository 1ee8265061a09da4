// Package main is the entrypoint for the query-proxy Lambda.
//
// It forwards dashboard free-text questions to the remote natural-language
// endpoint and returns the selected intent label, keeping the endpoint
// credentials out of the browser.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"trizzaone/internal/config"
	"trizzaone/internal/external"
	"trizzaone/internal/query"
	"trizzaone/internal/types"
)

type queryRequest struct {
	Text string `json:"text"`
}

type queryResponse struct {
	Intent query.Intent      `json:"intent"`
	Args   map[string]string `json:"args,omitempty"`
}

// Handler proxies one intent-selection request.
type Handler struct {
	client *external.QueryClient
	logger *slog.Logger
}

// Handle parses the question, delegates to the remote endpoint, and returns
// the label resolved into the closed intent set.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var payload queryRequest
	if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
		return errorResponse(types.NewAppError(types.ErrCodeValidationInvalidJSON,
			"malformed JSON in request body", err)), nil
	}
	if payload.Text == "" {
		return errorResponse(types.NewAppError(types.ErrCodeValidationMissingField,
			"text is required", nil)), nil
	}

	sel, err := h.client.SelectIntent(ctx, payload.Text)
	if err != nil {
		h.logger.ErrorContext(ctx, "intent selection failed", "error", err)
		return errorResponse(err), nil
	}

	body, err := json.Marshal(queryResponse{
		Intent: query.ParseIntent(sel.Label),
		Args:   sel.Args,
	})
	if err != nil {
		return errorResponse(types.NewAppError(types.ErrCodeInternalUnexpected,
			"failed to marshal response", err)), nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

// errorResponse renders an AppError as the standard error envelope.
func errorResponse(err error) events.APIGatewayProxyResponse {
	code := types.ErrCodeInternalUnexpected
	message := "an unexpected error occurred"
	status := http.StatusInternalServerError

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		status = appErr.HTTPStatus()
	}

	body, _ := json.Marshal(map[string]any{
		"error": map[string]string{
			"code":    string(code),
			"message": message,
		},
	})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	handler := &Handler{
		client: external.NewQueryClient(cfg.Query),
		logger: logger,
	}
	lambda.Start(handler.Handle)
}
