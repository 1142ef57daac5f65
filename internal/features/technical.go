package features

import (
	"time"

	"github.com/markcheno/go-talib"

	"sibyl/internal/domain/market"
	"sibyl/pkg/errors"
)

// Minimum closes required before an indicator becomes defined. Values
// below the window stay nil instead of being extrapolated.
const (
	rsiPeriod = 14
	minRSI    = rsiPeriod + 1
	minMACD   = 35 // slow EMA 26 plus signal EMA 9
	bbPeriod  = 20
	emaPeriod = 50
	atrPeriod = 14
	minATR    = atrPeriod + 1
)

// TechnicalVersion tags the technical feature schema
const TechnicalVersion = "tech_v1"

// TechnicalFeatures holds the indicator values for the most recent bar.
// Pointer fields are nil when the history is too short for the
// indicator's window.
type TechnicalFeatures struct {
	Symbol     string    `json:"symbol"`
	AsOf       time.Time `json:"as_of"`
	Close      float64   `json:"close"`
	RSI14      *float64  `json:"rsi14,omitempty"`
	MACD       *float64  `json:"macd,omitempty"`
	MACDSignal *float64  `json:"macd_signal,omitempty"`
	BBUpper    *float64  `json:"bb_upper,omitempty"`
	BBLower    *float64  `json:"bb_lower,omitempty"`
	SMA20      *float64  `json:"sma20,omitempty"`
	EMA50      *float64  `json:"ema50,omitempty"`
	ATR14      *float64  `json:"atr14,omitempty"`
	Version    string    `json:"feature_version"`
}

// ComputeTechnical derives indicators from daily candles, which must be
// sorted ascending by timestamp. At least one candle is required.
func ComputeTechnical(candles []market.Candle) (*TechnicalFeatures, error) {
	if len(candles) == 0 {
		return nil, errors.Wrap(errors.ErrInsufficientData, "no candles")
	}

	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	last := candles[n-1]
	out := &TechnicalFeatures{
		Symbol:  last.Symbol,
		AsOf:    last.Ts,
		Close:   last.Close,
		Version: TechnicalVersion,
	}

	if n >= minRSI {
		rsi := talib.Rsi(closes, rsiPeriod)
		out.RSI14 = ptr(rsi[n-1])
	}

	if n >= minMACD {
		macd, macdSignal, _ := talib.Macd(closes, 12, 26, 9)
		out.MACD = ptr(macd[n-1])
		out.MACDSignal = ptr(macdSignal[n-1])
	}

	if n >= bbPeriod {
		upper, middle, lower := talib.BBands(closes, bbPeriod, 2, 2, talib.SMA)
		out.BBUpper = ptr(upper[n-1])
		out.BBLower = ptr(lower[n-1])
		out.SMA20 = ptr(middle[n-1])
	}

	if n >= emaPeriod {
		ema := talib.Ema(closes, emaPeriod)
		out.EMA50 = ptr(ema[n-1])
	}

	if n >= minATR {
		atr := talib.Atr(highs, lows, closes, atrPeriod)
		out.ATR14 = ptr(atr[n-1])
	}

	return out, nil
}

func ptr(v float64) *float64 {
	return &v
}
