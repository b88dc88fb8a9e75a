package signal

import (
	"math"
	"time"

	"helmsman/internal/market"
)

var testNow = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

// candlesFromCloses builds a minute-bar series ending just before testNow.
func candlesFromCloses(closes []float64) []market.Candle {
	out := make([]market.Candle, len(closes))
	for i, c := range closes {
		closeTime := testNow.Add(-time.Duration(len(closes)-1-i) * time.Minute)
		out[i] = market.Candle{
			OpenTime:  closeTime.Add(-time.Minute).UnixMilli(),
			CloseTime: closeTime.UnixMilli(),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

// agedCandles shifts the whole series back by age so the last bar is stale.
func agedCandles(closes []float64, age time.Duration) []market.Candle {
	out := candlesFromCloses(closes)
	for i := range out {
		out[i].OpenTime -= age.Milliseconds()
		out[i].CloseTime -= age.Milliseconds()
	}
	return out
}

// zigzagUp rises on net while keeping RSI inside the continuation band:
// alternating gains of 1.5 and losses of 1.0.
func zigzagUp(n int, base float64) []float64 {
	out := make([]float64, n)
	v := base
	for i := range out {
		if i%2 == 0 {
			v += 1.5
		} else {
			v -= 1.0
		}
		out[i] = v
	}
	return out
}

func monotonic(n int, base, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + float64(i)*step
	}
	return out
}

func withBadBars(candles []market.Candle) []market.Candle {
	bad := []market.Candle{
		{CloseTime: testNow.UnixMilli(), Open: 100, High: 101, Low: 99, Close: math.NaN(), Volume: 10},
		{CloseTime: testNow.UnixMilli(), Open: 100, High: 101, Low: 99, Close: 0, Volume: 10},
		{CloseTime: 0, Open: 100, High: 101, Low: 99, Close: 100, Volume: 10},
	}
	out := append([]market.Candle(nil), candles...)
	return append(bad, out...)
}
