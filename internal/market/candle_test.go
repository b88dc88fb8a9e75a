package market

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(closeTime time.Time, close float64) Candle {
	return Candle{
		OpenTime:  closeTime.Add(-time.Minute).UnixMilli(),
		CloseTime: closeTime.UnixMilli(),
		Open:      close,
		High:      close + 0.5,
		Low:       close - 0.5,
		Close:     close,
		Volume:    1000,
	}
}

func TestCandleValid(t *testing.T) {
	now := time.Now()
	good := bar(now, 100)
	assert.True(t, good.Valid())

	cases := []struct {
		name   string
		mutate func(*Candle)
	}{
		{"nan close", func(c *Candle) { c.Close = math.NaN() }},
		{"inf high", func(c *Candle) { c.High = math.Inf(1) }},
		{"zero close", func(c *Candle) { c.Close = 0 }},
		{"negative low", func(c *Candle) { c.Low = -1 }},
		{"zero close time", func(c *Candle) { c.CloseTime = 0 }},
		{"high below low", func(c *Candle) { c.High = c.Low - 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := good
			tc.mutate(&c)
			assert.False(t, c.Valid())
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	now := time.Now()
	in := []Candle{
		bar(now.Add(-3*time.Minute), 100),
		{CloseTime: now.UnixMilli()}, // all-zero OHLC
		bar(now.Add(-2*time.Minute), 101),
		bar(now.Add(-1*time.Minute), 102),
	}
	out := Filter(in)
	require.Len(t, out, 3)
	assert.Equal(t, 100.0, out[0].Close)
	assert.Equal(t, 102.0, out[2].Close)
}

func TestStale(t *testing.T) {
	now := time.Now()
	assert.True(t, Stale(nil, now, time.Hour))

	fresh := []Candle{bar(now.Add(-5*time.Minute), 100)}
	assert.False(t, Stale(fresh, now, 10*time.Minute))

	old := []Candle{bar(now.Add(-11*time.Minute), 100)}
	assert.True(t, Stale(old, now, 10*time.Minute))
}

func TestSeriesExtractors(t *testing.T) {
	now := time.Now()
	candles := []Candle{bar(now.Add(-time.Minute), 100), bar(now, 102)}
	assert.Equal(t, []float64{100, 102}, Closes(candles))
	assert.Equal(t, []float64{100.5, 102.5}, Highs(candles))
	assert.Equal(t, []float64{99.5, 101.5}, Lows(candles))
	assert.Equal(t, []float64{1000, 1000}, Volumes(candles))
}

func TestHTTPSourceBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/bars", r.URL.Path)
		assert.Equal(t, "SPY", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"open_time": 1, "close_time": 60000, "open": 100, "high": 101, "low": 99, "close": 100.5, "volume": 5000},
			{"open_time": 60000, "close_time": 120000, "open": 100.5, "high": 102, "low": 100, "close": 101.5, "volume": 4000}
		]`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	bars, err := src.Bars(context.Background(), "SPY", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 101.5, bars[1].Close)
}

func TestHTTPSourceBarsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	_, err := src.Bars(context.Background(), "SPY", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
}
