package experiment

import (
	"math"

	"recohub/domain"
)

const (
	zScore95         = 1.96
	significanceP    = 0.05
	revenueMinSample = 30
)

// VariantStats are the aggregated counters for one experiment variant, as
// maintained by the external rollup job.
type VariantStats struct {
	Impressions int64
	Clicks      int64
	Conversions int64
	Revenue     float64
	SampleSize  int64
}

// Comparison is the statistical readout of variant vs control. All numeric
// fields are rounded to 4 decimal places; degenerate inputs (zero
// denominators) resolve to zeros, never NaN.
type Comparison struct {
	ControlValue  float64
	VariantValue  float64
	ControlCI     [2]float64
	VariantCI     [2]float64
	Lift          float64
	PValue        float64
	IsSignificant bool
}

// MetricValue computes the metric for one variant. Division by zero yields 0.
func MetricValue(metric string, s VariantStats) float64 {
	switch metric {
	case domain.MetricCTR:
		return safeDiv(float64(s.Clicks), float64(s.Impressions))
	case domain.MetricConversionRate:
		return safeDiv(float64(s.Conversions), float64(s.SampleSize))
	case domain.MetricRevenuePerVisitor:
		return safeDiv(s.Revenue, float64(s.SampleSize))
	default:
		return 0
	}
}

// Compare computes metric values, Wilson confidence intervals, lift and
// significance for a control/variant pair.
func Compare(metric string, control, variant VariantStats) Comparison {
	controlValue := MetricValue(metric, control)
	variantValue := MetricValue(metric, variant)

	lift := 0.0
	if controlValue != 0 {
		lift = (variantValue - controlValue) / controlValue
	}

	var pValue float64
	var controlCI, variantCI [2]float64

	switch metric {
	case domain.MetricCTR:
		pValue = twoProportionPValue(
			float64(control.Clicks), float64(control.Impressions),
			float64(variant.Clicks), float64(variant.Impressions),
		)
		controlCI = wilsonInterval(controlValue, float64(control.Impressions))
		variantCI = wilsonInterval(variantValue, float64(variant.Impressions))
	case domain.MetricConversionRate:
		pValue = twoProportionPValue(
			float64(control.Conversions), float64(control.SampleSize),
			float64(variant.Conversions), float64(variant.SampleSize),
		)
		controlCI = wilsonInterval(controlValue, float64(control.SampleSize))
		variantCI = wilsonInterval(variantValue, float64(variant.SampleSize))
	case domain.MetricRevenuePerVisitor:
		// Documented placeholder, not a real t-test: downstream dashboards
		// depend on this exact sample-size threshold behavior.
		if control.SampleSize < revenueMinSample || variant.SampleSize < revenueMinSample {
			pValue = 1.0
		} else {
			pValue = 0.5
		}
		controlCI = [2]float64{controlValue, controlValue}
		variantCI = [2]float64{variantValue, variantValue}
	default:
		pValue = 1.0
	}

	return Comparison{
		ControlValue:  round4(controlValue),
		VariantValue:  round4(variantValue),
		ControlCI:     [2]float64{round4(controlCI[0]), round4(controlCI[1])},
		VariantCI:     [2]float64{round4(variantCI[0]), round4(variantCI[1])},
		Lift:          round4(lift),
		PValue:        round4(pValue),
		IsSignificant: pValue < significanceP,
	}
}

// twoProportionPValue runs a two-proportion z-test with pooled proportion and
// returns the two-tailed p-value. Zero denominators produce p=1 (no signal).
func twoProportionPValue(x1, n1, x2, n2 float64) float64 {
	if n1 == 0 || n2 == 0 {
		return 1.0
	}

	p1 := x1 / n1
	p2 := x2 / n2
	pooled := (x1 + x2) / (n1 + n2)

	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	if se == 0 {
		return 1.0
	}

	z := (p2 - p1) / se

	return 2 * (1 - normalCDF(math.Abs(z)))
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// wilsonInterval computes the Wilson score interval for a binomial
// proportion at 95% confidence, clamped to [0,1]. n=0 yields [0,0].
func wilsonInterval(p, n float64) [2]float64 {
	if n == 0 {
		return [2]float64{0, 0}
	}

	z := zScore95
	z2 := z * z

	denom := 1 + z2/n
	center := p + z2/(2*n)
	margin := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n))

	low := (center - margin) / denom
	high := (center + margin) / denom

	return [2]float64{clamp01(low), clamp01(high)}
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
