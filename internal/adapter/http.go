// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

// HTTPSourceConfig configures one HTTP remote source instance.
type HTTPSourceConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpRemoteSource struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPRemoteSource constructs a [RemoteSource] over the conference data
// HTTP API. The same constructor serves both the primary service and the
// secondary replica; they differ only in base URL.
func NewHTTPRemoteSource(cfg HTTPSourceConfig, log *logger.Logger) RemoteSource {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpRemoteSource{client: cli, logger: log}
}

func (h *httpRemoteSource) FetchTable(ctx context.Context, remoteID string) (json.RawMessage, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get("/api/tables/" + remoteID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetch table %q: %w", remoteID, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch table %q: response is not valid JSON", remoteID)
	}

	return json.RawMessage(body), nil
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrTableNotFound
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}
