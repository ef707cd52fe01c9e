package joinvalidation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBoundary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boundary_reference.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadBoundarySetFiltersAndSorts(t *testing.T) {
	path := writeBoundary(t, `ED81CD,LAD81CD,NAME
03BN0002,03BN,Ardwick
03BN0001,03bn ,Hulme
08AA0001,08AA,Elsewhere
03BN0003,03BN,Moss Side
`)

	units, err := LoadBoundarySet(path, "ED81CD", "LAD81CD", "03BN")
	require.NoError(t, err)
	assert.Equal(t, []string{"03BN0001", "03BN0002", "03BN0003"}, units)
}

func TestLoadBoundarySetHeaderCaseAndBOM(t *testing.T) {
	path := writeBoundary(t, "\uFEFFed81cd,lad81cd\n03BN0001,03BN\n")

	units, err := LoadBoundarySet(path, "ED81CD", "LAD81CD", "03BN")
	require.NoError(t, err)
	assert.Equal(t, []string{"03BN0001"}, units)
}

func TestLoadBoundarySetNoAreaMatches(t *testing.T) {
	path := writeBoundary(t, "ED81CD,LAD81CD\n08AA0001,08AA\n")

	units, err := LoadBoundarySet(path, "ED81CD", "LAD81CD", "03BN")
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestLoadBoundarySetMissingColumns(t *testing.T) {
	path := writeBoundary(t, "ED81CD,NAME\n03BN0001,Hulme\n")

	_, err := LoadBoundarySet(path, "ED81CD", "LAD81CD", "03BN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LAD81CD")

	_, err = LoadBoundarySet(path, "ZONEID", "NAME", "03BN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZONEID")
}

func TestLoadBoundarySetMissingFile(t *testing.T) {
	_, err := LoadBoundarySet(filepath.Join(t.TempDir(), "nope.csv"), "ED81CD", "LAD81CD", "03BN")
	assert.Error(t, err)
}
