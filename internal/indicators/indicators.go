package indicators

import (
	"math"

	"github.com/LautaroIbanez/One-Trade-sub000/internal/market"
	"github.com/shopspring/decimal"
)

// EMA calculates the Exponential Moving Average (recursive weight 2/(period+1),
// seeded from the SMA of the first period values)
func EMA(prices []decimal.Decimal, period int) []decimal.Decimal {
	if period <= 0 || len(prices) < period {
		return []decimal.Decimal{}
	}

	result := make([]decimal.Decimal, len(prices))
	multiplier := decimal.NewFromFloat(2.0 / float64(period+1))

	sum := decimal.Zero
	for i := 0; i < period; i++ {
		sum = sum.Add(prices[i])
	}
	result[period-1] = sum.Div(decimal.NewFromInt(int64(period)))

	for i := period; i < len(prices); i++ {
		ema := prices[i].Sub(result[i-1]).Mul(multiplier).Add(result[i-1])
		result[i] = ema
	}

	return result[period-1:]
}

// SMA calculates the Simple Moving Average
func SMA(prices []decimal.Decimal, period int) []decimal.Decimal {
	if period <= 0 || len(prices) < period {
		return []decimal.Decimal{}
	}

	result := make([]decimal.Decimal, len(prices)-period+1)

	for i := 0; i <= len(prices)-period; i++ {
		sum := decimal.Zero
		for j := 0; j < period; j++ {
			sum = sum.Add(prices[i+j])
		}
		result[i] = sum.Div(decimal.NewFromInt(int64(period)))
	}

	return result
}

// RSI calculates the Relative Strength Index (Wilder-style gain/loss EMA ratio)
func RSI(prices []decimal.Decimal, period int) []decimal.Decimal {
	if period <= 0 || len(prices) < period+1 {
		return []decimal.Decimal{}
	}

	gains := make([]decimal.Decimal, len(prices)-1)
	losses := make([]decimal.Decimal, len(prices)-1)

	for i := 1; i < len(prices); i++ {
		change := prices[i].Sub(prices[i-1])
		if change.GreaterThan(decimal.Zero) {
			gains[i-1] = change
			losses[i-1] = decimal.Zero
		} else {
			gains[i-1] = decimal.Zero
			losses[i-1] = change.Abs()
		}
	}

	gainEMA := EMA(gains, period)
	lossEMA := EMA(losses, period)

	length := len(gainEMA)
	if len(lossEMA) < length {
		length = len(lossEMA)
	}
	if length == 0 {
		return []decimal.Decimal{}
	}

	result := make([]decimal.Decimal, length)
	for i := 0; i < length; i++ {
		loss := lossEMA[i]
		if loss.IsZero() {
			result[i] = decimal.NewFromInt(100)
			continue
		}
		rs := gainEMA[i].Div(loss)
		rsi := decimal.NewFromInt(100).Sub(decimal.NewFromInt(100).Div(decimal.NewFromInt(1).Add(rs)))
		result[i] = rsi
	}

	return result
}

// MACD calculates the Moving Average Convergence Divergence
func MACD(prices []decimal.Decimal, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, histogram []decimal.Decimal) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 || len(prices) < slowPeriod {
		return []decimal.Decimal{}, []decimal.Decimal{}, []decimal.Decimal{}
	}

	fastEMA := EMA(prices, fastPeriod)
	slowEMA := EMA(prices, slowPeriod)

	offset := len(fastEMA) - len(slowEMA)
	if offset < 0 {
		offset = 0
	}

	macdLine := make([]decimal.Decimal, len(slowEMA))
	for i := 0; i < len(slowEMA); i++ {
		macdLine[i] = fastEMA[i+offset].Sub(slowEMA[i])
	}

	signalLine := EMA(macdLine, signalPeriod)

	hist := make([]decimal.Decimal, len(signalLine))
	offset = len(macdLine) - len(signalLine)
	for i := 0; i < len(signalLine); i++ {
		hist[i] = macdLine[i+offset].Sub(signalLine[i])
	}

	return macdLine, signalLine, hist
}

// BollingerBands calculates Bollinger Bands (SMA ± stdDev * rolling std)
func BollingerBands(prices []decimal.Decimal, period int, stdDev float64) (upper, middle, lower []decimal.Decimal) {
	if period <= 0 || len(prices) < period {
		return []decimal.Decimal{}, []decimal.Decimal{}, []decimal.Decimal{}
	}

	middle = SMA(prices, period)
	upper = make([]decimal.Decimal, len(middle))
	lower = make([]decimal.Decimal, len(middle))

	for i := 0; i < len(middle); i++ {
		sum := 0.0
		for j := 0; j < period; j++ {
			diff, _ := prices[i+j].Sub(middle[i]).Float64()
			sum += diff * diff
		}
		std := math.Sqrt(sum / float64(period))
		stdDecimal := decimal.NewFromFloat(std * stdDev)

		upper[i] = middle[i].Add(stdDecimal)
		lower[i] = middle[i].Sub(stdDecimal)
	}

	return upper, middle, lower
}

// TrueRange calculates the true range series:
// max(high-low, |high-prevClose|, |low-prevClose|), length len(high)-1
func TrueRange(high, low, close []decimal.Decimal) []decimal.Decimal {
	if len(high) < 2 || len(low) < 2 || len(close) < 2 {
		return []decimal.Decimal{}
	}

	trueRanges := make([]decimal.Decimal, len(high)-1)

	for i := 1; i < len(high); i++ {
		hl := high[i].Sub(low[i])
		hc := high[i].Sub(close[i-1]).Abs()
		lc := low[i].Sub(close[i-1]).Abs()

		tr := hl
		if hc.GreaterThan(tr) {
			tr = hc
		}
		if lc.GreaterThan(tr) {
			tr = lc
		}

		trueRanges[i-1] = tr
	}

	return trueRanges
}

// ATR calculates the Average True Range (rolling mean of the true range)
func ATR(high, low, close []decimal.Decimal, period int) []decimal.Decimal {
	if period <= 0 || len(high) < period+1 || len(low) < period+1 || len(close) < period+1 {
		return []decimal.Decimal{}
	}

	return SMA(TrueRange(high, low, close), period)
}

// ADX calculates the Average Directional Index using smoothed +DM/-DM over ATR
func ADX(high, low, close []decimal.Decimal, period int) []decimal.Decimal {
	if period <= 0 || len(high) < 2*period+1 || len(low) < 2*period+1 || len(close) < 2*period+1 {
		return []decimal.Decimal{}
	}

	n := len(high)
	plusDM := make([]decimal.Decimal, n-1)
	minusDM := make([]decimal.Decimal, n-1)

	for i := 1; i < n; i++ {
		upMove := high[i].Sub(high[i-1])
		downMove := low[i-1].Sub(low[i])

		if upMove.GreaterThan(downMove) && upMove.GreaterThan(decimal.Zero) {
			plusDM[i-1] = upMove
		}
		if downMove.GreaterThan(upMove) && downMove.GreaterThan(decimal.Zero) {
			minusDM[i-1] = downMove
		}
	}

	smoothTR := SMA(TrueRange(high, low, close), period)
	smoothPlus := SMA(plusDM, period)
	smoothMinus := SMA(minusDM, period)

	length := len(smoothTR)
	if len(smoothPlus) < length {
		length = len(smoothPlus)
	}
	if len(smoothMinus) < length {
		length = len(smoothMinus)
	}

	hundred := decimal.NewFromInt(100)
	dx := make([]decimal.Decimal, length)
	for i := 0; i < length; i++ {
		if smoothTR[i].IsZero() {
			dx[i] = decimal.Zero
			continue
		}
		plusDI := smoothPlus[i].Div(smoothTR[i]).Mul(hundred)
		minusDI := smoothMinus[i].Div(smoothTR[i]).Mul(hundred)

		sum := plusDI.Add(minusDI)
		if sum.IsZero() {
			dx[i] = decimal.Zero
			continue
		}
		dx[i] = plusDI.Sub(minusDI).Abs().Div(sum).Mul(hundred)
	}

	return SMA(dx, period)
}

// VWAP calculates the session-cumulative Volume Weighted Average Price series:
// vwap[i] = Σ(typical*volume)[0..i] / Σvolume[0..i]. The caller slices the
// series to reset the accumulation.
func VWAP(candles []market.Candle) []decimal.Decimal {
	if len(candles) == 0 {
		return []decimal.Decimal{}
	}

	result := make([]decimal.Decimal, len(candles))
	totalPV := decimal.Zero
	totalVolume := decimal.Zero

	for i, c := range candles {
		totalPV = totalPV.Add(c.TypicalPrice().Mul(c.Volume))
		totalVolume = totalVolume.Add(c.Volume)

		if totalVolume.IsZero() {
			result[i] = c.Close
			continue
		}
		result[i] = totalPV.Div(totalVolume)
	}

	return result
}

// HeikinAshi calculates the smoothed Heikin-Ashi transform of a candle series.
// haOpen is seeded from the average of the first real open and close.
func HeikinAshi(candles []market.Candle) []market.Candle {
	if len(candles) == 0 {
		return []market.Candle{}
	}

	two := decimal.NewFromInt(2)
	four := decimal.NewFromInt(4)

	result := make([]market.Candle, len(candles))

	for i, c := range candles {
		haClose := c.Open.Add(c.High).Add(c.Low).Add(c.Close).Div(four)

		var haOpen decimal.Decimal
		if i == 0 {
			haOpen = c.Open.Add(c.Close).Div(two)
		} else {
			haOpen = result[i-1].Open.Add(result[i-1].Close).Div(two)
		}

		haHigh := c.High
		if haOpen.GreaterThan(haHigh) {
			haHigh = haOpen
		}
		if haClose.GreaterThan(haHigh) {
			haHigh = haClose
		}

		haLow := c.Low
		if haOpen.LessThan(haLow) {
			haLow = haOpen
		}
		if haClose.LessThan(haLow) {
			haLow = haClose
		}

		result[i] = market.Candle{
			Symbol:    c.Symbol,
			Timestamp: c.Timestamp,
			Open:      haOpen,
			High:      haHigh,
			Low:       haLow,
			Close:     haClose,
			Volume:    c.Volume,
		}
	}

	return result
}
