// Package analytics posts events to the analytics-tracker function.
package analytics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/giftportfolio/portfolio/pkg/core/domain"
	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

const TrackerPath = "/functions/v1/analytics-tracker"

type HTTPSink struct {
	endpoint   string
	anonKey    string
	httpClient *http.Client
}

// NewHTTPSink targets {baseURL}/functions/v1/analytics-tracker.
func NewHTTPSink(baseURL, anonKey string, timeout time.Duration) *HTTPSink {
	endpoint := ""
	if baseURL != "" {
		endpoint = strings.TrimRight(baseURL, "/") + TrackerPath
	}
	return &HTTPSink{
		endpoint:   endpoint,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSink) Send(ctx context.Context, event domain.AnalyticsEvent) error {
	if s.endpoint == "" {
		return &domain.ConfigError{Key: "ANALYTICS_URL"}
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.anonKey)
	req.Header.Set("apikey", s.anonKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "post event")
	}
	defer resp.Body.Close()

	// The response body is only of interest for the log line.
	reply, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ingestion endpoint answered %d: %s", resp.StatusCode, strings.TrimSpace(string(reply)))
	}
	logging.Debug().Str("type", string(event.Type)).RawJSON("reply", compactJSON(reply)).Msg("ingestion reply")
	return nil
}

func compactJSON(b []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return []byte(`null`)
	}
	return buf.Bytes()
}

// Ensure interface compliance
var _ ports.EventSink = (*HTTPSink)(nil)
