package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() *Table {
	return &Table{
		Name:      "sas10",
		KeyColumn: "zoneid",
		Columns:   []string{"zoneid", "81sas100001", "81sas100287"},
		Rows: [][]string{
			{"03BN0001", "100", "20"},
			{"03BN0002", "0", "5"},
			{"03BN0003", "", "bad"},
		},
	}
}

func TestColumnIndexCaseInsensitive(t *testing.T) {
	tab := testTable()
	assert.Equal(t, 0, tab.ColumnIndex("ZONEID"))
	assert.Equal(t, 1, tab.ColumnIndex("81SAS100001"))
	assert.Equal(t, -1, tab.ColumnIndex("missing"))
}

func TestKeys(t *testing.T) {
	tab := testTable()
	assert.Equal(t, []string{"03BN0001", "03BN0002", "03BN0003"}, tab.Keys())
}

func TestNumericColumn(t *testing.T) {
	tab := testTable()
	values, ok := tab.NumericColumn("81sas100001")
	require.True(t, ok)
	require.Len(t, values, 3)
	assert.Equal(t, 100.0, values[0])
	assert.Equal(t, 0.0, values[1])
	assert.True(t, math.IsNaN(values[2]), "blank cell must become NaN, not zero")

	values, ok = tab.NumericColumn("81sas100287")
	require.True(t, ok)
	assert.True(t, math.IsNaN(values[2]), "unparseable cell must become NaN")

	_, ok = tab.NumericColumn("nope")
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	tab := testTable()
	cp := tab.Clone()
	cp.Rows[0][1] = "999"
	cp.Columns[1] = "changed"
	assert.Equal(t, "100", tab.Rows[0][1])
	assert.Equal(t, "81sas100001", tab.Columns[1])
}

func TestNormalizeUnitID(t *testing.T) {
	assert.Equal(t, "03BN0001", NormalizeUnitID("  03bn0001 "))
	assert.Equal(t, "03BN0001", NormalizeUnitID("03BN0001"))
	// Leading zeros must survive: identifiers are strings, never integers.
	assert.Equal(t, "0001", NormalizeUnitID("0001"))
}

func TestParseNumeric(t *testing.T) {
	assert.Equal(t, 1234.5, ParseNumeric("1,234.5"))
	assert.Equal(t, -3.0, ParseNumeric(" -3 "))
	assert.True(t, IsMissing(ParseNumeric("")))
	assert.True(t, IsMissing(ParseNumeric("n/a")))
}
