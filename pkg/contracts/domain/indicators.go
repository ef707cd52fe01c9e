package domain

// IndicatorType classifies how an indicator is computed.
type IndicatorType string

const (
	IndicatorTypeRaw         IndicatorType = "raw"
	IndicatorTypeDenominator IndicatorType = "denominator"
	IndicatorTypeRate        IndicatorType = "rate"
)

// Indicator computation status codes. These are carried in metadata so
// downstream consumers can distinguish "computed but zero" from "could not
// compute"; only configuration-structure problems fail a run.
const (
	StatusOK                 = "OK"
	StatusCodeNotFound       = "SAS_CODE_NOT_FOUND"
	StatusMissingReference   = "MISSING_REFERENCE"
	StatusMissingDenominator = "MISSING_DENOMINATOR"
	StatusNoFormula          = "NO_FORMULA"
	StatusUnknownType        = "UNKNOWN_TYPE"
)

// CompositeCalc is a rate of the form "base - reference_indicator",
// element-wise against an already-computed series.
type CompositeCalc struct {
	Base      float64 `json:"base"`
	Reference string  `json:"reference"`
}

// RatioCalc is a rate of the form "100 * numerator_column / denominator",
// where the denominator is a previously computed indicator series.
type RatioCalc struct {
	NumeratorColumn string `json:"numerator_column"`
	DenominatorName string `json:"denominator_name"`
}

// IndicatorDefinition is one named indicator from the configuration document.
// Composite/Ratio hold the calculation expression parsed once at load time;
// at most one of them is set, and a rate with neither is reported as
// NO_FORMULA when computed.
type IndicatorDefinition struct {
	Name        string        `yaml:"-" json:"name" validate:"required"`
	Type        IndicatorType `yaml:"type" json:"type"`
	Code        string        `yaml:"code" json:"sas_code,omitempty"`
	Description string        `yaml:"description" json:"description,omitempty"`
	Calculation string        `yaml:"calculation" json:"calculation,omitempty"`
	Denominator string        `yaml:"denominator" json:"denominator,omitempty"`
	Table       string        `yaml:"table" json:"source_table,omitempty"`

	Composite *CompositeCalc `yaml:"-" json:"-"`
	Ratio     *RatioCalc     `yaml:"-" json:"-"`
}

// IsLeaf reports whether the definition is computed in the first pass
// (directly from a source column, no dependency on other indicators).
func (d *IndicatorDefinition) IsLeaf() bool {
	return d.Type == IndicatorTypeRaw || d.Type == IndicatorTypeDenominator
}

// IndicatorMetadata describes the provenance, status and summary statistics
// of one computed indicator. Statistic fields are pointers so indicators with
// no valid values serialize without them (JSON cannot carry NaN).
type IndicatorMetadata struct {
	Name         string        `json:"name"`
	Type         IndicatorType `json:"type"`
	Description  string        `json:"description,omitempty"`
	SASCode      string        `json:"sas_code,omitempty"`
	Calculation  string        `json:"calculation,omitempty"`
	Denominator  string        `json:"denominator,omitempty"`
	SourceTable  string        `json:"source_table,omitempty"`
	Status       string        `json:"status"`
	NonNullCount int           `json:"non_null_count"`
	NonZeroCount int           `json:"non_zero_count,omitempty"`
	Sum          *float64      `json:"sum,omitempty"`
	Mean         *float64      `json:"mean,omitempty"`
	Min          *float64      `json:"min,omitempty"`
	Max          *float64      `json:"max,omitempty"`
}
