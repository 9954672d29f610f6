package market

import (
	"time"

	"github.com/LautaroIbanez/One-Trade-sub000/pkg/utils"
	"github.com/shopspring/decimal"
)

// GenerateSample generates a deterministic synthetic candle series for offline
// runs and tests. Price movement is a fixed cyclic drift, not random, so two
// generations with the same arguments are identical.
func GenerateSample(symbol string, startTime time.Time, candles int, basePrice float64, interval time.Duration) *Series {
	if interval <= 0 {
		interval = time.Hour
	}

	series := &Series{
		Symbol:  symbol,
		Candles: make([]Candle, 0, candles),
	}

	currentTime := startTime
	currentPrice := decimal.NewFromFloat(basePrice)

	for i := 0; i < candles; i++ {
		change := decimal.NewFromFloat((float64(i%10) - 5) * 0.001) // ±0.5% movement
		open := currentPrice
		close := currentPrice.Add(currentPrice.Mul(change))

		high := utils.MaxDecimal(open, close).Mul(decimal.NewFromFloat(1.001))
		low := utils.MinDecimal(open, close).Mul(decimal.NewFromFloat(0.999))
		volume := decimal.NewFromFloat(1000 + float64(i%500))

		series.Candles = append(series.Candles, Candle{
			Symbol:    symbol,
			Timestamp: currentTime,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})

		currentTime = currentTime.Add(interval)
		currentPrice = close
	}

	return series
}
