// Package indicator derives aligned technical-indicator arrays from a bar
// series. Build never fails: missing volume yields neutral zero-filled arrays
// flagged unavailable, and any per-indicator numerical problem is replaced by
// a safe fallback locally.
package indicator

import (
	"log"
	"math"

	"github.com/markcheno/go-talib"

	"pivotscan/pkg/model"
)

// VolatilitySuite groups the volatility indicator family.
type VolatilitySuite struct {
	ATR7  []float64
	ATR14 []float64
	ATR21 []float64

	// Price-relative ATR, in percent of close.
	ATR7Pct  []float64
	ATR14Pct []float64
	ATR21Pct []float64

	// Alternative OHLC-based volatility estimators.
	GarmanKlass []float64
	Parkinson   []float64

	// DynamicThreshold is the 75th percentile of the 14-period ATR
	// percentage, used as the adaptive significance bar.
	DynamicThreshold float64

	// Regime labels each bar low_vol / medium_vol / high_vol by ATR14Pct
	// tertile, or unknown during warm-up.
	Regime []string
}

// Volatility regime labels.
const (
	RegimeLow     = "low_vol"
	RegimeMedium  = "medium_vol"
	RegimeHigh    = "high_vol"
	RegimeUnknown = "unknown"
)

// TrendSuite groups the trend indicator family.
type TrendSuite struct {
	MA5  []float64
	MA10 []float64
	MA20 []float64
	MA50 []float64

	// ADX measures trend strength.
	ADX []float64

	// PricePosition is the close relative to the medium (20-bar) average,
	// as a signed fraction.
	PricePosition []float64
}

// MomentumSuite groups the momentum indicator family.
type MomentumSuite struct {
	RSI14      []float64
	Momentum5  []float64
	Momentum10 []float64
}

// VolumeSuite groups volume indicators. When the series carries no volume the
// arrays are zero-filled and Available is false.
type VolumeSuite struct {
	Available      bool
	VolumeMA       []float64
	RelativeVolume []float64
	OBV            []float64
}

// StructureSuite is a placeholder for market-structure indicators. The
// neutral 0.5 fill is intentional and must not block otherwise-valid
// candidates.
type StructureSuite struct {
	SupportStrength    []float64
	ResistanceStrength []float64
	PriceDensity       []float64
}

// FractalSuite holds the series-wide fractal statistics.
type FractalSuite struct {
	HurstExponent    float64
	FractalDimension float64
}

// Suite is the full set of aligned indicator arrays for one bar series.
type Suite struct {
	Volatility VolatilitySuite
	Trend      TrendSuite
	Momentum   MomentumSuite
	Volume     VolumeSuite
	Structure  StructureSuite
	Fractal    FractalSuite
}

// Build computes the complete indicator suite for the given bars.
func Build(bars []model.Bar) *Suite {
	n := len(bars)
	high := make([]float64, n)
	low := make([]float64, n)
	close := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		high[i] = b.High
		low[i] = b.Low
		close[i] = b.Close
		volume[i] = b.Volume
	}

	return &Suite{
		Volatility: buildVolatility(high, low, close),
		Trend:      buildTrend(high, low, close),
		Momentum:   buildMomentum(close),
		Volume:     buildVolume(close, volume),
		Structure:  buildStructure(n),
		Fractal:    buildFractal(close),
	}
}

func buildVolatility(high, low, close []float64) VolatilitySuite {
	n := len(close)
	v := VolatilitySuite{}

	v.ATR7, v.ATR7Pct = atrWithPct(high, low, close, 7)
	v.ATR14, v.ATR14Pct = atrWithPct(high, low, close, 14)
	v.ATR21, v.ATR21Pct = atrWithPct(high, low, close, 21)

	v.GarmanKlass = garmanKlass(high, low, close, v.ATR14Pct)
	v.Parkinson = parkinson(high, low)

	v.DynamicThreshold = NaNPercentile(v.ATR14Pct, 75)

	p33 := NaNPercentile(v.ATR14Pct, 33)
	p67 := NaNPercentile(v.ATR14Pct, 67)
	v.Regime = make([]string, n)
	for i, pct := range v.ATR14Pct {
		switch {
		case math.IsNaN(pct) || math.IsNaN(p33) || math.IsNaN(p67):
			v.Regime[i] = RegimeUnknown
		case pct < p33:
			v.Regime[i] = RegimeLow
		case pct > p67:
			v.Regime[i] = RegimeHigh
		default:
			v.Regime[i] = RegimeMedium
		}
	}

	return v
}

// atrWithPct computes the average true range and its price-relative
// percentage. The warm-up prefix is NaN.
func atrWithPct(high, low, close []float64, period int) (atr, pct []float64) {
	n := len(close)
	if n > period {
		atr = talib.Atr(high, low, close, period)
	} else {
		// Not enough bars for the library call; fall back to a rolling
		// mean over the raw true range.
		atr = rollingMean(trueRange(high, low, close), period)
	}
	atr = markWarmup(atr, period)

	pct = nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(atr[i]) && close[i] > 0 {
			pct[i] = atr[i] / close[i] * 100
		}
	}
	return atr, pct
}

// garmanKlass computes the Garman-Klass volatility estimator, annualized.
// Inputs are clamped for numerical stability; if the estimate degenerates the
// ATR percentage series is substituted, matching the builder's
// catch-and-default policy.
func garmanKlass(high, low, close, atrPctFallback []float64) []float64 {
	n := len(close)
	out := nanSlice(n)
	degenerate := false
	for i := 0; i < n; i++ {
		h := math.Max(high[i], 1e-8)
		l := math.Max(low[i], 1e-8)
		c := math.Max(close[i], 1e-8)
		pc := c
		if i > 0 {
			pc = math.Max(close[i-1], 1e-8)
		}

		hlRatio := clamp(h/l, 1.001, 10)
		ccRatio := clamp(c/pc, 0.1, 10)

		hlLog := math.Pow(math.Log(hlRatio), 2)
		ccLog := math.Pow(math.Log(ccRatio), 2)

		gkVar := 0.5*hlLog - (2*math.Ln2-1)*ccLog
		gkVar = math.Max(gkVar, 1e-8)
		val := math.Sqrt(252 * gkVar)
		if math.IsNaN(val) || math.IsInf(val, 0) {
			degenerate = true
			break
		}
		out[i] = val
	}
	if degenerate {
		log.Printf("[INDICATOR] garman-klass estimator degenerated, substituting ATR%% series")
		out = append([]float64(nil), atrPctFallback...)
	}
	return out
}

// parkinson computes the Parkinson range-based volatility estimator,
// annualized.
func parkinson(high, low []float64) []float64 {
	n := len(high)
	out := nanSlice(n)
	factor := math.Sqrt(252 / (4 * math.Ln2))
	for i := 0; i < n; i++ {
		h := math.Max(high[i], 1e-8)
		l := math.Max(low[i], 1e-8)
		ratio := clamp(h/l, 1, 10)
		out[i] = factor * math.Abs(math.Log(ratio))
	}
	return out
}

func buildTrend(high, low, close []float64) TrendSuite {
	n := len(close)
	t := TrendSuite{
		MA5:  smaSeries(close, 5),
		MA10: smaSeries(close, 10),
		MA20: smaSeries(close, 20),
		MA50: smaSeries(close, 50),
	}

	const adxPeriod = 14
	if n > 2*adxPeriod {
		t.ADX = markWarmup(talib.Adx(high, low, close, adxPeriod), 2*adxPeriod)
	} else {
		t.ADX = nanSlice(n)
	}

	t.PricePosition = nanSlice(n)
	for i := 0; i < n; i++ {
		ma := t.MA20[i]
		if !math.IsNaN(ma) && ma != 0 {
			t.PricePosition[i] = (close[i] - ma) / ma
		}
	}
	return t
}

// smaSeries computes a simple moving average with NaN warm-up, preferring the
// library implementation when enough bars exist.
func smaSeries(xs []float64, period int) []float64 {
	if len(xs) >= period && period > 0 {
		return markWarmup(talib.Sma(xs, period), period-1)
	}
	return rollingMean(xs, period)
}

func buildMomentum(close []float64) MomentumSuite {
	n := len(close)
	m := MomentumSuite{}

	if n > 14 {
		m.RSI14 = markWarmup(talib.Rsi(close, 14), 14)
	} else {
		m.RSI14 = nanSlice(n)
	}

	m.Momentum5 = momentumRatio(close, 5)
	m.Momentum10 = momentumRatio(close, 10)
	return m
}

// momentumRatio is the fractional price change over lag bars.
func momentumRatio(close []float64, lag int) []float64 {
	out := nanSlice(len(close))
	for i := lag; i < len(close); i++ {
		if close[i-lag] != 0 {
			out[i] = (close[i] - close[i-lag]) / close[i-lag]
		}
	}
	return out
}

func buildVolume(close, volume []float64) VolumeSuite {
	n := len(close)
	available := false
	for _, v := range volume {
		if v > 0 {
			available = true
			break
		}
	}
	if !available {
		return VolumeSuite{
			Available:      false,
			VolumeMA:       make([]float64, n),
			RelativeVolume: make([]float64, n),
			OBV:            make([]float64, n),
		}
	}

	vs := VolumeSuite{Available: true}
	vs.VolumeMA = rollingMean(volume, 20)
	vs.RelativeVolume = nanSlice(n)
	for i := 0; i < n; i++ {
		ma := vs.VolumeMA[i]
		if !math.IsNaN(ma) && ma > 0 {
			vs.RelativeVolume[i] = volume[i] / ma
		}
	}
	if n > 1 {
		vs.OBV = talib.Obv(close, volume)
	} else {
		vs.OBV = make([]float64, n)
	}
	return vs
}

// buildStructure fills the placeholder structure metrics with the neutral
// 0.5. Real support/resistance strength is intentionally not computed here.
func buildStructure(n int) StructureSuite {
	fill := func() []float64 {
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = 0.5
		}
		return xs
	}
	return StructureSuite{
		SupportStrength:    fill(),
		ResistanceStrength: fill(),
		PriceDensity:       fill(),
	}
}

func buildFractal(close []float64) FractalSuite {
	h := HurstExponent(close)
	return FractalSuite{
		HurstExponent:    h,
		FractalDimension: 2 - h,
	}
}
