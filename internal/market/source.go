package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Source supplies bar history for signal evaluation.
type Source interface {
	Bars(ctx context.Context, symbol string, limit int) ([]Candle, error)
}

// Position is an open options position as reported by the gateway.
type Position struct {
	Symbol       string  `json:"symbol"`
	DaysToExpiry int     `json:"days_to_expiry"`
	NotionalUSD  float64 `json:"notional_usd"`
}

// HTTPSource pulls bars from the market-data gateway's local REST surface.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{BaseURL: baseURL, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *HTTPSource) Bars(ctx context.Context, symbol string, limit int) ([]Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/v1/bars?%s", s.BaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching bars for %s failed: %w", symbol, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("gateway bars status=%d for %s", resp.StatusCode, symbol)
	}
	var bars []Candle
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decoding bars for %s failed: %w", symbol, err)
	}
	return bars, nil
}

// OpenPositions fetches the open positions from the gateway.
func (s *HTTPSource) OpenPositions(ctx context.Context) ([]Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/v1/positions", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching open positions failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("gateway positions status=%d", resp.StatusCode)
	}
	var positions []Position
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		return nil, fmt.Errorf("decoding open positions failed: %w", err)
	}
	return positions, nil
}
