// Package oanda fetches candles from the OANDA v3 REST API.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quantprim/prism/internal/core"
)

const baseURL = "https://api-fxpractice.oanda.com"

// OANDA implements the feed Provider interface for OANDA.
type OANDA struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// New creates a new OANDA provider.
func New(apiKey string) *OANDA {
	return &OANDA{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL creates an OANDA provider with custom base URL (for testing)
func NewWithBaseURL(apiKey, url string) *OANDA {
	o := New(apiKey)
	o.baseURL = url
	return o
}

func (o *OANDA) Name() string {
	return "oanda"
}

type candlesResponse struct {
	Instrument string       `json:"instrument"`
	Candles    []restCandle `json:"candles"`
}

type restCandle struct {
	Time     string  `json:"time"`
	Volume   float64 `json:"volume"`
	Complete bool    `json:"complete"`
	Mid      ohlc    `json:"mid"`
}

type ohlc struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

// FetchBars fetches midpoint candles from OANDA. Incomplete candles are
// dropped.
func (o *OANDA) FetchBars(ctx context.Context, symbol string, interval core.Interval, start, end time.Time) ([]core.Bar, error) {
	// OANDA instruments use underscores: EUR/USD -> EUR_USD.
	instrument := strings.ReplaceAll(symbol, "/", "_")

	q := url.Values{}
	q.Set("granularity", toGranularity(interval))
	q.Set("from", start.UTC().Format(time.RFC3339))
	q.Set("to", end.UTC().Format(time.RFC3339))
	q.Set("price", "M")

	reqURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", o.baseURL, instrument, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
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

	var result candlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("decoding response: %w", err))
	}

	bars := make([]core.Bar, 0, len(result.Candles))
	for _, c := range result.Candles {
		if !c.Complete {
			continue
		}
		ts, err := time.Parse(time.RFC3339, c.Time)
		if err != nil {
			return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("candle time %q: %w", c.Time, err))
		}

		open, err1 := strconv.ParseFloat(c.Mid.O, 64)
		high, err2 := strconv.ParseFloat(c.Mid.H, 64)
		low, err3 := strconv.ParseFloat(c.Mid.L, 64)
		closePrice, err4 := strconv.ParseFloat(c.Mid.C, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, core.WrapError(core.ErrFeedFailed, fmt.Errorf("candle at %s has malformed prices", c.Time))
		}

		bars = append(bars, core.Bar{
			Time:   ts.UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: c.Volume,
		})
	}

	return bars, nil
}

func toGranularity(interval core.Interval) string {
	switch interval {
	case core.Interval1m:
		return "M1"
	case core.Interval5m:
		return "M5"
	case core.Interval1h:
		return "H1"
	case core.Interval4h:
		return "H4"
	case core.Interval1d:
		return "D"
	default:
		return "D"
	}
}
