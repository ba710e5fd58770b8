package analyzer

import (
	"fmt"
	"strings"

	"pivotscan/internal/indicator"
	"pivotscan/pkg/model"
)

// Report is the human-readable narrative attached to every analysis result.
type Report struct {
	Summary            string `json:"summary"`
	MethodInfo         string `json:"method_info"`
	QualityAssessment  string `json:"quality_assessment"`
	VolatilityAnalysis string `json:"volatility_analysis"`
	Recommendation     string `json:"recommendation"`
}

func buildReport(strategyName string, sensitivity model.Sensitivity, numHighs, numLows int, quality model.QualityMetrics, suite *indicator.Suite) Report {
	return Report{
		Summary:            fmt.Sprintf("Detection complete: %d pivot highs, %d pivot lows retained", numHighs, numLows),
		MethodInfo:         fmt.Sprintf("Strategy: %s | Sensitivity: %s", strategyName, sensitivity),
		QualityAssessment:  fmt.Sprintf("Quality grade: %s (F1: %.0f%%)", quality.Grade, quality.F1*100),
		VolatilityAnalysis: volatilityAnalysis(&suite.Volatility),
		Recommendation:     recommendation(quality, numHighs+numLows),
	}
}

// volatilityAnalysis renders the multi-section volatility narrative: current
// levels against history, the alternative estimators, the regime and dynamic
// threshold, stability, and what that means for trading the retained pivots.
func volatilityAnalysis(v *indicator.VolatilitySuite) string {
	var b strings.Builder

	atr14 := indicator.LastValid(v.ATR14Pct, 0)
	atr7 := indicator.LastValid(v.ATR7Pct, 0)
	atr21 := indicator.LastValid(v.ATR21Pct, 0)
	atr14Mean := indicator.NaNMean(v.ATR14Pct)
	atr14Std := indicator.NaNStd(v.ATR14Pct)

	b.WriteString("Volatility levels:\n")
	fmt.Fprintf(&b, "  ATR(14): %.2f%% (historical mean %.2f%%)\n", atr14, atr14Mean)
	fmt.Fprintf(&b, "  ATR(7): %.2f%% | ATR(21): %.2f%%\n", atr7, atr21)

	gk := indicator.LastValid(v.GarmanKlass, 0)
	pk := indicator.LastValid(v.Parkinson, 0)
	if gk > 0 || pk > 0 {
		b.WriteString("Range-based estimators:\n")
		if gk > 0 {
			fmt.Fprintf(&b, "  Garman-Klass: %.2f (accounts for opening gaps)\n", gk)
		}
		if pk > 0 {
			fmt.Fprintf(&b, "  Parkinson: %.2f (high-low based)\n", pk)
		}
	}

	regime := indicator.RegimeUnknown
	if len(v.Regime) > 0 {
		regime = v.Regime[len(v.Regime)-1]
	}
	b.WriteString("Volatility environment:\n")
	fmt.Fprintf(&b, "  Current regime: %s (%s)\n", regime, regimeDescription(regime))
	fmt.Fprintf(&b, "  Dynamic threshold: %.2f%% (75th percentile of ATR(14)%%)\n", v.DynamicThreshold)
	fmt.Fprintf(&b, "  Relative level: %s\n", relativeLevel(atr14, atr14Mean))

	if atr14Mean > 0 && atr14Std > 0 {
		cv := atr14Std / atr14Mean
		b.WriteString("Stability:\n")
		fmt.Fprintf(&b, "  Coefficient of variation: %.2f (%s)\n", cv, stabilityDescription(cv))
	}

	b.WriteString("Trading implications:\n")
	switch regime {
	case indicator.RegimeLow:
		b.WriteString("  Low volatility favors trend-following; turning-point signals are more reliable.")
	case indicator.RegimeHigh:
		b.WriteString("  High volatility calls for tighter risk control; expect more false breaks.")
	default:
		b.WriteString("  Medium volatility suits balanced strategies; combine with confirming signals.")
	}

	return b.String()
}

func regimeDescription(regime string) string {
	switch regime {
	case indicator.RegimeLow:
		return "quiet market"
	case indicator.RegimeHigh:
		return "turbulent market"
	case indicator.RegimeMedium:
		return "balanced market"
	default:
		return "regime undetermined"
	}
}

func relativeLevel(current, mean float64) string {
	if current <= 0 || mean <= 0 {
		return "not computable"
	}
	rel := (current/mean - 1) * 100
	switch {
	case rel > 20:
		return fmt.Sprintf("well above historical mean (%+.1f%%)", rel)
	case rel > 10:
		return fmt.Sprintf("above historical mean (%+.1f%%)", rel)
	case rel < -20:
		return fmt.Sprintf("well below historical mean (%+.1f%%)", rel)
	case rel < -10:
		return fmt.Sprintf("below historical mean (%+.1f%%)", rel)
	default:
		return fmt.Sprintf("near historical mean (%+.1f%%)", rel)
	}
}

func stabilityDescription(cv float64) string {
	switch {
	case cv < 0.3:
		return "volatility fairly stable"
	case cv < 0.6:
		return "volatility moderately variable"
	default:
		return "volatility highly variable"
	}
}

// recommendation derives the closing advice from quality and pivot count.
func recommendation(q model.QualityMetrics, totalPivots int) string {
	switch {
	case q.F1 >= 0.7 && totalPivots >= 5:
		return "High-quality signals; worth acting on."
	case q.F1 >= 0.5 && totalPivots >= 3:
		return "Moderate-quality signals; combine with other indicators."
	default:
		return "Low-quality signals; do not use in isolation."
	}
}
