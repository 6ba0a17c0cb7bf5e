package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/herdbook/internal/config"
)

const rpcPath = "rest/v1/rpc/calculate_next_feeding_date"

// ErrComputationUnavailable means the remote calculation failed or could not
// be reached. Callers recover with a local fallback.
var ErrComputationUnavailable = errors.New("next feeding computation unavailable")

// Client exposes the remote next-feeding-date calculation.
type Client interface {
	CalculateNextFeedingDate(ctx context.Context, req Request) (time.Time, error)
}

// Request mirrors the RPC arguments.
type Request struct {
	Frequency   string   `json:"p_frequency"`
	FeedingTime string   `json:"p_feeding_time"`
	DaysOfWeek  []string `json:"p_days_of_week,omitempty"`
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a calculator client using the provided configuration values.
func NewClient(cfg config.CalculatorConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{httpClient: restyClient}
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Hint    string `json:"hint"`
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05.999999-07:00",
}

func (c *APIClient) CalculateNextFeedingDate(ctx context.Context, req Request) (time.Time, error) {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetError(apiErr).
		Post(rpcPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrComputationUnavailable, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return time.Time{}, fmt.Errorf("%w: status=%d, code=%s, message=%s",
			ErrComputationUnavailable, resp.StatusCode(), apiErr.Code, apiErr.Message)
	}

	var raw string
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return time.Time{}, fmt.Errorf("%w: decode response: %v", ErrComputationUnavailable, err)
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparsable instant %q", ErrComputationUnavailable, raw)
}
