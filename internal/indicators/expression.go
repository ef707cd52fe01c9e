package indicators

import (
	"strconv"
	"strings"

	"censuscli/pkg/contracts/domain"
)

// parseCalculation classifies a rate definition's calculation expression into
// its tagged variant once, at configuration-load time. Two forms exist:
//
//	composite: "base - REFERENCE_INDICATOR"   (e.g. "100 - PCT_NO_CAR")
//	ratio:     numerator column / denominator indicator, scaled by 100;
//	           recognized by a denominator reference, the calculation text
//	           being documentation only (e.g. "100 * HH_NOCAR / TOTAL_HH")
//
// A rate that fits neither form keeps both variants nil and is reported as
// NO_FORMULA when computed, never raised.
func parseCalculation(def *domain.IndicatorDefinition) {
	if def.Type != domain.IndicatorTypeRate {
		return
	}

	calc := strings.TrimSpace(def.Calculation)
	if left, right, found := strings.Cut(calc, " - "); found {
		base, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
		ref := strings.TrimSpace(right)
		if err == nil && ref != "" {
			def.Composite = &domain.CompositeCalc{Base: base, Reference: ref}
			return
		}
	}

	if def.Denominator != "" {
		def.Ratio = &domain.RatioCalc{
			NumeratorColumn: def.Code,
			DenominatorName: def.Denominator,
		}
	}
}
