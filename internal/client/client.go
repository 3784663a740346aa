// Package client is a small HTTP client for the predictor's JSON API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"energy-predictor/internal/features"
	"energy-predictor/internal/ml"
	"energy-predictor/internal/storage"
	"energy-predictor/internal/web"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("predictor: %d %s", e.StatusCode, e.Message)
}

// Unwrap lets callers test a 404 with errors.Is(err, ml.ErrUnknownModel).
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ml.ErrUnknownModel
	}
	return nil
}

type Client struct {
	base string
	rest *resty.Client
}

func New(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	r.SetHeader("Accept", "application/json")
	return &Client{base: strings.TrimRight(base, "/"), rest: r}
}

// Predict runs the named model (the server default when model is empty).
func (c *Client) Predict(ctx context.Context, model string, raw features.RawInput) (ml.Result, error) {
	var res ml.Result
	err := c.do(ctx, http.MethodPost, "/api/v1/predict", web.PredictRequest{Model: model, Input: raw}, nil, &res)
	return res, err
}

// Features returns the derived features for raw in schema order.
func (c *Client) Features(ctx context.Context, raw features.RawInput) ([]features.Named, error) {
	var fr web.FeaturesResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/features", raw, nil, &fr); err != nil {
		return nil, err
	}
	return fr.Features, nil
}

func (c *Client) Models(ctx context.Context) (web.ModelsResponse, error) {
	var mr web.ModelsResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/models", nil, nil, &mr)
	return mr, err
}

// HistoryQuery selects predictions from the server's log. Zero fields are
// left to the server: its default limit, every model, no time bounds.
type HistoryQuery struct {
	Limit int
	Model string
	Since time.Time
	Until time.Time
}

func (q HistoryQuery) params() map[string]string {
	params := map[string]string{}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Model != "" {
		params["model"] = q.Model
	}
	if !q.Since.IsZero() {
		params["since"] = q.Since.Format(time.RFC3339)
	}
	if !q.Until.IsZero() {
		params["until"] = q.Until.Format(time.RFC3339)
	}
	return params
}

// History returns the predictions matching q, newest first.
func (c *Client) History(ctx context.Context, q HistoryQuery) ([]storage.PredictionRecord, error) {
	params := q.params()
	var hr web.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/history", nil, params, &hr); err != nil {
		return nil, err
	}
	return hr.Predictions, nil
}

func (c *Client) Health(ctx context.Context) (web.HealthResponse, error) {
	var hr web.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &hr)
	return hr, err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, params map[string]string, result interface{}) error {
	apiErr := &web.ErrorResponse{}
	req := c.rest.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if len(params) > 0 {
		req.SetQueryParams(params)
	}

	resp, err := req.Execute(method, c.base+path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.String()
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return nil
}
