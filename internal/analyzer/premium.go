package analyzer

import (
	"fmt"
	"math"
	"time"

	"pivotscan/internal/strategy"
	"pivotscan/pkg/model"
)

// PremiumMetrics rates the series from its lowest retained low: annualized
// log-return volatility and Sharpe ratio (risk-free rate zero) from that
// trough to the end, plus the premium flag when both clear their bars.
type PremiumMetrics struct {
	TroughTime       *time.Time `json:"trough_time,omitempty"`
	TroughPrice      float64    `json:"trough_price,omitempty"`
	AnnualizedVolPct float64    `json:"annualized_volatility_pct"`
	SharpeRatio      float64    `json:"sharpe_ratio"`
	IsPremium        bool       `json:"is_premium"`
	Reason           string     `json:"reason"`
}

// Premium thresholds: annualized volatility at least 40% and Sharpe at least
// 0.8.
const (
	premiumMinVolPct = 40.0
	premiumMinSharpe = 0.8
)

// premiumMetrics never fails; with no usable low or too short a tail it
// returns a zeroed struct carrying the reason.
func premiumMetrics(bars []model.Bar, lows []strategy.Candidate, freq model.Frequency) PremiumMetrics {
	if len(lows) == 0 || len(bars) < 2 {
		return PremiumMetrics{Reason: "no retained lows or series too short"}
	}

	troughIdx := -1
	troughPrice := math.Inf(1)
	for _, c := range lows {
		if c.Index < 0 || c.Index >= len(bars) {
			continue
		}
		if bars[c.Index].Low < troughPrice {
			troughPrice = bars[c.Index].Low
			troughIdx = c.Index
		}
	}
	if troughIdx < 0 {
		return PremiumMetrics{Reason: "no valid low indices"}
	}

	troughTime := bars[troughIdx].Time
	m := PremiumMetrics{
		TroughTime:  &troughTime,
		TroughPrice: troughPrice,
	}

	var logReturns []float64
	for i := troughIdx + 1; i < len(bars); i++ {
		prev := math.Max(bars[i-1].Close, 1e-12)
		cur := math.Max(bars[i].Close, 1e-12)
		logReturns = append(logReturns, math.Log(cur/prev))
	}
	if len(logReturns) < 2 {
		m.Reason = "insufficient bars after trough"
		return m
	}

	periodsPerYear := 252.0
	if freq == model.Weekly {
		periodsPerYear = 52.0
	}

	var sum float64
	for _, r := range logReturns {
		sum += r
	}
	mu := sum / float64(len(logReturns))

	var sq float64
	for _, r := range logReturns {
		d := r - mu
		sq += d * d
	}
	sigma := math.Sqrt(sq / float64(len(logReturns)-1))

	m.AnnualizedVolPct = sigma * math.Sqrt(periodsPerYear) * 100
	if sigma > 1e-12 {
		m.SharpeRatio = mu / sigma * math.Sqrt(periodsPerYear)
	}
	m.IsPremium = m.AnnualizedVolPct >= premiumMinVolPct && m.SharpeRatio >= premiumMinSharpe
	m.Reason = fmt.Sprintf("annualized volatility %.1f%%, Sharpe ratio %.2f", m.AnnualizedVolPct, m.SharpeRatio)
	return m
}
