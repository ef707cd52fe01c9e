package tables

import (
	"log/slog"

	"censuscli/internal/config"
	pipeerrors "censuscli/internal/errors"
	"censuscli/pkg/contracts/domain"
)

// FilterPrefix returns a derived copy of the table retaining only rows whose
// normalized key (trimmed, uppercased, leading zeros preserved) starts with
// the given administrative-area prefix. The caller's table is never mutated.
//
// An empty result is a hard failure for the table: the error carries a sample
// of the unfiltered keys to aid debugging key-format mismatches.
func FilterPrefix(t *domain.Table, prefix string) (*domain.Table, int, error) {
	keyIdx := t.KeyIndex()
	if keyIdx < 0 {
		return nil, 0, pipeerrors.Newf(pipeerrors.CodeTableLoadFailed,
			"key column %q not found", t.KeyColumn).WithUnit(t.Name)
	}

	filtered := &domain.Table{
		Name:      t.Name,
		KeyColumn: t.KeyColumn,
		Columns:   append([]string(nil), t.Columns...),
	}

	normPrefix := domain.NormalizeUnitID(prefix)
	for _, row := range t.Rows {
		if keyIdx >= len(row) {
			continue
		}
		key := domain.NormalizeUnitID(row[keyIdx])
		if len(key) < len(normPrefix) || key[:len(normPrefix)] != normPrefix {
			continue
		}
		out := append([]string(nil), row...)
		out[keyIdx] = key
		filtered.Rows = append(filtered.Rows, out)
	}

	count := filtered.RowCount()
	if count == 0 {
		sample := sampleKeys(t, keyIdx, config.UnfilteredKeySampleSize)
		return nil, 0, pipeerrors.Newf(pipeerrors.CodeEmptyFilterResult,
			"no rows with prefix %q; sample keys: %v", prefix, sample).
			WithUnit(t.Name).WithDetails(sample)
	}

	slog.Debug("Prefix filter applied",
		slog.String("table", t.Name),
		slog.String("prefix", prefix),
		slog.Int("retained", count))

	return filtered, count, nil
}

func sampleKeys(t *domain.Table, keyIdx, n int) []string {
	sample := make([]string, 0, n)
	for _, row := range t.Rows {
		if len(sample) == n {
			break
		}
		if keyIdx < len(row) {
			sample = append(sample, row[keyIdx])
		}
	}
	return sample
}
