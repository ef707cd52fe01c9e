// Package joinvalidation validates geographic-key coverage between a
// boundary reference set and an assembled data table: normalize both key
// spaces, left-join, compute the match rate, and classify it into a quality
// tier.
package joinvalidation

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"censuscli/pkg/contracts/domain"
)

// LoadBoundarySet reads a boundary reference table (delimited text) and
// returns the sorted unit identifiers belonging to the given administrative
// area. unitColumn holds the geography identifier, areaColumn the
// administrative-area code the filter matches against.
func LoadBoundarySet(path, unitColumn, areaColumn, areaCode string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open boundary reference %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse boundary reference %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("boundary reference %s is empty", path)
	}

	unitIdx, areaIdx := -1, -1
	for i, col := range records[0] {
		name := strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
		switch {
		case strings.EqualFold(name, unitColumn):
			unitIdx = i
		case strings.EqualFold(name, areaColumn):
			areaIdx = i
		}
	}
	if unitIdx < 0 {
		return nil, fmt.Errorf("unit column %q not found in %s", unitColumn, path)
	}
	if areaIdx < 0 {
		return nil, fmt.Errorf("area column %q not found in %s", areaColumn, path)
	}

	normArea := domain.NormalizeUnitID(areaCode)
	var units []string
	for _, row := range records[1:] {
		if unitIdx >= len(row) || areaIdx >= len(row) {
			continue
		}
		if domain.NormalizeUnitID(row[areaIdx]) != normArea {
			continue
		}
		if unit := strings.TrimSpace(row[unitIdx]); unit != "" {
			units = append(units, unit)
		}
	}
	sort.Strings(units)
	return units, nil
}
