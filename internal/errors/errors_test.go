package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeEmptyFilterResult, "no rows retained").WithUnit("sas02")
	assert.Equal(t, "sas02: no rows retained [EMPTY_FILTER_RESULT]", err.Error())
}

func TestIsMatchesOnCode(t *testing.T) {
	err := Newf(CodeMissingPartFile, "part %d not found", 3).WithUnit("sas07")
	assert.True(t, stderrors.Is(err, ErrMissingPartFile))
	assert.False(t, stderrors.Is(err, ErrDuplicateColumn))
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	inner := New(CodeDuplicateColumn, "collision")
	outer := fmt.Errorf("loading table: %w", inner)
	assert.True(t, stderrors.Is(outer, ErrDuplicateColumn))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(cause, CodeTableLoadFailed, "read failed")
	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestWithUnitDoesNotMutate(t *testing.T) {
	base := New(CodeEmptyFilterResult, "empty")
	tagged := base.WithUnit("sas04")
	require.Empty(t, base.Unit)
	assert.Equal(t, "sas04", tagged.Unit)
}

func TestWithDetails(t *testing.T) {
	err := New(CodeDuplicateColumn, "collision").WithDetails([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, err.Details)
}
