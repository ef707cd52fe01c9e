// Package indicators loads the declarative indicator configuration and
// computes indicator series over assembled geography tables in two passes:
// raw counts and denominators first, derived rates second.
package indicators

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	pipeerrors "censuscli/internal/errors"
	"censuscli/pkg/contracts/domain"
)

// Config holds the indicator definitions grouped by reporting period, in the
// order they appear in the configuration document. Order matters: the engine
// computes pass-2 rates in definition order, and output columns follow it.
type Config struct {
	Periods []Period
}

// Period is one reporting period (census year) and its ordered definitions.
type Period struct {
	Name        string
	Definitions []domain.IndicatorDefinition
}

// PeriodByName returns the definitions for a reporting period.
func (c *Config) PeriodByName(name string) (*Period, bool) {
	for i := range c.Periods {
		if c.Periods[i].Name == name {
			return &c.Periods[i], true
		}
	}
	return nil, false
}

// LoadConfig reads the YAML indicator configuration. The document maps
// years -> indicator name -> definition; yaml.MapSlice preserves the file
// order the two-pass engine relies on. Definitions are validated and their
// calculation expressions parsed once here, not per row.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read indicator config %s: %w", path, err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, pipeerrors.Wrap(err, pipeerrors.CodeConfigInvalid, "failed to parse indicator config")
	}

	years, ok := mapValue(doc, "years")
	if !ok {
		return nil, pipeerrors.New(pipeerrors.CodeConfigInvalid, "indicator config has no 'years' section")
	}

	validate := validator.New()
	cfg := &Config{}

	for _, yearItem := range years {
		periodName := fmt.Sprintf("%v", yearItem.Key)
		defsMap, ok := yearItem.Value.(yaml.MapSlice)
		if !ok {
			return nil, pipeerrors.Newf(pipeerrors.CodeConfigInvalid,
				"period %s is not a mapping of indicators", periodName)
		}

		period := Period{Name: periodName}
		seen := make(map[string]struct{}, len(defsMap))

		for _, defItem := range defsMap {
			name := fmt.Sprintf("%v", defItem.Key)
			if _, dup := seen[name]; dup {
				return nil, pipeerrors.Newf(pipeerrors.CodeDuplicateIndicator,
					"indicator %s defined twice in period %s", name, periodName)
			}
			seen[name] = struct{}{}

			fields, _ := defItem.Value.(yaml.MapSlice)
			def := domain.IndicatorDefinition{
				Name:        name,
				Type:        domain.IndicatorType(stringField(fields, "type")),
				Code:        stringField(fields, "code"),
				Description: stringField(fields, "description"),
				Calculation: stringField(fields, "calculation"),
				Denominator: stringField(fields, "denominator"),
				Table:       stringField(fields, "table"),
			}
			if def.Type == "" {
				def.Type = domain.IndicatorTypeRaw
			}

			if err := validate.Struct(&def); err != nil {
				return nil, pipeerrors.Wrap(err, pipeerrors.CodeConfigInvalid,
					fmt.Sprintf("indicator %s in period %s is invalid", name, periodName))
			}
			parseCalculation(&def)

			period.Definitions = append(period.Definitions, def)
		}

		cfg.Periods = append(cfg.Periods, period)
	}

	if len(cfg.Periods) == 0 {
		return nil, pipeerrors.New(pipeerrors.CodeConfigInvalid, "indicator config defines no periods")
	}
	return cfg, nil
}

func mapValue(ms yaml.MapSlice, key string) (yaml.MapSlice, bool) {
	for _, item := range ms {
		if fmt.Sprintf("%v", item.Key) == key {
			v, ok := item.Value.(yaml.MapSlice)
			return v, ok
		}
	}
	return nil, false
}

func stringField(ms yaml.MapSlice, key string) string {
	for _, item := range ms {
		if fmt.Sprintf("%v", item.Key) == key {
			if item.Value == nil {
				return ""
			}
			return strings.TrimSpace(fmt.Sprintf("%v", item.Value))
		}
	}
	return ""
}
