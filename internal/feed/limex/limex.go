// Package limex fetches candles from the Limex DataHub API.
package limex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quantprim/prism/internal/core"
)

const baseURL = "https://hub.limex.com"

// Limex implements the feed Provider interface for Limex DataHub.
type Limex struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new Limex provider.
func New(apiKey string) *Limex {
	return &Limex{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates a Limex provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *Limex {
	l := New(apiKey)
	l.baseURL = url
	return l
}

func (l *Limex) Name() string {
	return "limex"
}

type candle struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchBars fetches historical candles from Limex DataHub.
func (l *Limex) FetchBars(ctx context.Context, symbol string, interval core.Interval, start, end time.Time) ([]core.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("timeframe", string(interval))
	q.Set("from", start.UTC().Format("2006-01-02"))
	q.Set("to", end.UTC().Format("2006-01-02"))

	reqURL := fmt.Sprintf("%s/v1/candles/?%s", l.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("fetching candles: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, core.WrapError(core.ErrFeedFailed, &core.StatusError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(body)),
		})
	}

	var candles []candle
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("decoding response: %w", err))
	}

	bars := make([]core.Bar, 0, len(candles))
	for _, c := range candles {
		ts, err := parseTimestamp(c.Timestamp)
		if err != nil {
			return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("candle timestamp %q: %w", c.Timestamp, err))
		}
		bars = append(bars, core.Bar{
			Time:   ts,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}

	return bars, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized format")
}
