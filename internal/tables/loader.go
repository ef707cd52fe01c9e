// Package tables assembles raw part files into wide per-geography tables,
// filters them to the target administrative area, and reconciles them against
// known-good aggregate baselines.
package tables

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"censuscli/internal/config"
	pipeerrors "censuscli/internal/errors"
	"censuscli/internal/files"
	"censuscli/pkg/contracts/domain"
)

// Loader assembles a named source table from its part files.
type Loader struct {
	discovery *files.Discovery
	keyColumn string
	logger    *slog.Logger
}

// NewLoader creates a table loader. keyColumn names the geography identifier
// column every part must carry.
func NewLoader(discovery *files.Discovery, keyColumn string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		discovery: discovery,
		keyColumn: keyColumn,
		logger:    logger.With(slog.String("component", "table_loader")),
	}
}

// Load locates and assembles all parts of the given table. Parts are
// inner-joined on the key column in part order; all non-key columns are
// carried forward. Any missing part or read error aborts the whole table
// load - there is no partial result.
func (l *Loader) Load(year int, spec config.TableSpec) (*domain.Table, error) {
	parts, err := l.discovery.FindTableParts(year, spec.Name, spec.Parts)
	if err != nil {
		return nil, pipeerrors.Wrap(err, pipeerrors.CodeMissingPartFile, "table parts incomplete").WithUnit(spec.Name)
	}

	l.logger.Info("Loading table parts",
		slog.String("table", spec.Name),
		slog.Int("parts", len(parts)))

	var assembled *domain.Table
	for i, part := range parts {
		pt, err := l.readPart(part.Path, spec.Name)
		if err != nil {
			return nil, pipeerrors.Wrap(err, pipeerrors.CodeTableLoadFailed,
				fmt.Sprintf("failed to read part %d (%s)", i+1, part.Name)).WithUnit(spec.Name)
		}

		l.logger.Info("Part loaded",
			slog.String("table", spec.Name),
			slog.Int("part", i+1),
			slog.Int("rows", pt.RowCount()),
			slog.Int("columns", len(pt.Columns)))

		if assembled == nil {
			assembled = pt
			continue
		}
		assembled, err = innerJoin(assembled, pt)
		if err != nil {
			var perr *pipeerrors.PipelineError
			if pe, ok := err.(*pipeerrors.PipelineError); ok {
				perr = pe
			} else {
				perr = pipeerrors.Wrap(err, pipeerrors.CodeTableLoadFailed,
					fmt.Sprintf("failed to merge part %d", i+1))
			}
			return nil, perr.WithUnit(spec.Name)
		}
		l.logger.Info("Part merged",
			slog.String("table", spec.Name),
			slog.Int("part", i+1),
			slog.Int("rows", assembled.RowCount()),
			slog.Int("total_columns", len(assembled.Columns)))
	}

	assembled.Name = spec.Name
	return assembled, nil
}

// readPart reads one part file into a table. CSV and XLSX parts share the
// same contract: first row is the header, one row per geography unit.
func (l *Loader) readPart(path, tableName string) (*domain.Table, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readWorkbookRows(path)
	default:
		records, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("file %s is empty", path)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := &domain.Table{
		Name:      tableName,
		KeyColumn: l.keyColumn,
		Columns:   header,
		Rows:      records[1:],
	}

	keyIdx := t.KeyIndex()
	if keyIdx < 0 {
		return nil, fmt.Errorf("key column %q not found in %s (columns: %s)",
			l.keyColumn, path, strings.Join(header, ", "))
	}

	// Reject duplicate keys within a part: downstream joins assume one row
	// per geography unit.
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		if keyIdx >= len(row) {
			continue
		}
		key := domain.NormalizeUnitID(row[keyIdx])
		if _, dup := seen[key]; dup {
			return nil, pipeerrors.Newf(pipeerrors.CodeDuplicateKey,
				"duplicate geography key %q in %s", key, path)
		}
		seen[key] = struct{}{}
	}
	return t, nil
}

// innerJoin joins two parts on the key column, keeping the left part's row
// order and dropping units absent from either side. Column-name collisions
// across parts are rejected rather than silently overwritten.
func innerJoin(left, right *domain.Table) (*domain.Table, error) {
	leftKey := left.KeyIndex()
	rightKey := right.KeyIndex()
	if leftKey < 0 || rightKey < 0 {
		return nil, fmt.Errorf("key column %q missing during join", left.KeyColumn)
	}

	var collisions []string
	existing := make(map[string]struct{}, len(left.Columns))
	for _, col := range left.Columns {
		existing[strings.ToLower(col)] = struct{}{}
	}
	for i, col := range right.Columns {
		if i == rightKey {
			continue
		}
		if _, dup := existing[strings.ToLower(col)]; dup {
			collisions = append(collisions, col)
		}
	}
	if len(collisions) > 0 {
		return nil, pipeerrors.Newf(pipeerrors.CodeDuplicateColumn,
			"column names collide across parts: %s", strings.Join(collisions, ", ")).
			WithDetails(collisions)
	}

	rightRows := make(map[string][]string, len(right.Rows))
	for _, row := range right.Rows {
		if rightKey < len(row) {
			rightRows[domain.NormalizeUnitID(row[rightKey])] = row
		}
	}

	joined := &domain.Table{
		Name:      left.Name,
		KeyColumn: left.KeyColumn,
		Columns:   append([]string(nil), left.Columns...),
	}
	for i, col := range right.Columns {
		if i != rightKey {
			joined.Columns = append(joined.Columns, col)
		}
	}

	for _, row := range left.Rows {
		if leftKey >= len(row) {
			continue
		}
		match, ok := rightRows[domain.NormalizeUnitID(row[leftKey])]
		if !ok {
			continue // inner join: unit must appear in every part
		}
		out := append([]string(nil), row...)
		for i, cell := range match {
			if i != rightKey {
				out = append(out, cell)
			}
		}
		joined.Rows = append(joined.Rows, out)
	}
	return joined, nil
}

// MergeOnKey inner-joins several tables on their shared key column, in the
// order given. Used to build the combined wide table the indicator engine
// consumes when indicators draw on more than one source table.
func MergeOnKey(ts ...*domain.Table) (*domain.Table, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("no tables to merge")
	}
	merged := ts[0].Clone()
	for _, t := range ts[1:] {
		var err error
		merged, err = innerJoin(merged, t)
		if err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// ReadTable reads a single previously written table file back into memory.
// Used by the standalone phase binaries to pick up where an earlier phase
// left off.
func ReadTable(path, name, keyColumn string) (*domain.Table, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readWorkbookRows(path)
	default:
		records, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("file %s is empty", path)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	t := &domain.Table{
		Name:      name,
		KeyColumn: keyColumn,
		Columns:   header,
		Rows:      records[1:],
	}
	if t.KeyIndex() < 0 {
		return nil, fmt.Errorf("key column %q not found in %s", keyColumn, path)
	}
	return t, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows tolerated; cells accessed by index
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return stripBOM(records), nil
}

func readWorkbookRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

// stripBOM removes a UTF-8 byte order mark from the first header cell.
func stripBOM(records [][]string) [][]string {
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\uFEFF")
	}
	return records
}
