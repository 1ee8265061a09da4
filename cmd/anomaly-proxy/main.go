// Package main is the entrypoint for the anomaly-proxy Lambda.
//
// The dashboard never talks to the third-party anomaly classifier directly;
// this function proxies API Gateway requests to it so the API key stays
// server-side and failures map onto the standard error envelope.
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
	"trizzaone/internal/types"
)

// Handler proxies one classification request.
type Handler struct {
	client *external.AnomalyClient
	logger *slog.Logger
}

// Handle parses the request body, delegates to the remote classifier, and
// maps the result onto an API Gateway response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var payload types.AnomalyRequest
	if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
		return errorResponse(types.NewAppError(types.ErrCodeValidationInvalidJSON,
			"malformed JSON in request body", err)), nil
	}

	resp, err := h.client.Classify(ctx, payload)
	if err != nil {
		h.logger.ErrorContext(ctx, "anomaly classification failed",
			"zone", payload.Zone,
			"error", err,
		)
		return errorResponse(err), nil
	}

	body, err := json.Marshal(resp)
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
		client: external.NewAnomalyClient(cfg.Anomaly),
		logger: logger,
	}
	lambda.Start(handler.Handle)
}
