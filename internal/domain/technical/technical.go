// Package technical derives price-based signals that complement news impact.
package technical

import (
	"errors"
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
)

// ErrInsufficientData is returned when there are too few closes for a period.
var ErrInsufficientData = errors.New("insufficient price data")

// Default indicator periods.
const (
	DefaultRSIPeriod   = 14
	DefaultShortPeriod = 5
	DefaultLongPeriod  = 20

	oversoldLevel   = 30
	overboughtLevel = 70
)

// Zone classifies an RSI reading.
type Zone string

// RSI zones.
const (
	ZoneOversold   Zone = "oversold"
	ZoneNeutral    Zone = "neutral"
	ZoneOverbought Zone = "overbought"
)

// Cross describes a moving-average crossover on the latest close.
type Cross string

// Crossover kinds.
const (
	CrossBullish Cross = "bullish"
	CrossBearish Cross = "bearish"
	CrossNone    Cross = "none"
)

// Signal is the combined technical reading of a price series.
type Signal struct {
	RSI       float64 `json:"rsi"`
	Zone      Zone    `json:"zone"`
	Crossover Cross   `json:"crossover"`
}

// RSI returns the latest relative strength index of closes.
func RSI(closes []float64, period int) (float64, error) {
	if period < 2 || len(closes) <= period {
		return 0, fmt.Errorf("%w: rsi(%d) needs more than %d closes, got %d", ErrInsufficientData, period, period, len(closes))
	}
	values := talib.Rsi(closes, period)
	return math.Round(values[len(values)-1]*100) / 100, nil
}

// Crossover reports whether the short simple moving average crossed the long
// one between the last two closes.
func Crossover(closes []float64, short, long int) (Cross, error) {
	if short < 1 || long <= short {
		return CrossNone, fmt.Errorf("%w: invalid periods %d/%d", ErrInsufficientData, short, long)
	}
	if len(closes) < long+1 {
		return CrossNone, fmt.Errorf("%w: sma(%d) crossover needs %d closes, got %d", ErrInsufficientData, long, long+1, len(closes))
	}

	s := talib.Sma(closes, short)
	l := talib.Sma(closes, long)
	last, prev := len(closes)-1, len(closes)-2

	switch {
	case s[prev] <= l[prev] && s[last] > l[last]:
		return CrossBullish, nil
	case s[prev] >= l[prev] && s[last] < l[last]:
		return CrossBearish, nil
	default:
		return CrossNone, nil
	}
}

// ZoneOf classifies an RSI value.
func ZoneOf(rsi float64) Zone {
	switch {
	case rsi < oversoldLevel:
		return ZoneOversold
	case rsi > overboughtLevel:
		return ZoneOverbought
	default:
		return ZoneNeutral
	}
}

// Evaluate computes RSI(14) and the SMA(5)/SMA(20) crossover of closes.
func Evaluate(closes []float64) (Signal, error) {
	rsi, err := RSI(closes, DefaultRSIPeriod)
	if err != nil {
		return Signal{}, err
	}
	cross, err := Crossover(closes, DefaultShortPeriod, DefaultLongPeriod)
	if err != nil {
		return Signal{}, err
	}
	return Signal{RSI: rsi, Zone: ZoneOf(rsi), Crossover: cross}, nil
}
