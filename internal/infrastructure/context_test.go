package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")
	assert.Equal(t, "run-123", GetRunID(ctx))
}

func TestGetRunIDEmptyWhenAbsent(t *testing.T) {
	assert.Equal(t, "", GetRunID(context.Background()))
}

func TestEnsureRunIDGenerates(t *testing.T) {
	ctx := EnsureRunID(context.Background())
	require.NotEmpty(t, GetRunID(ctx))
}

func TestEnsureRunIDKeepsExisting(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")
	assert.Equal(t, "run-123", GetRunID(EnsureRunID(ctx)))
}

func TestGenerateRunIDUnique(t *testing.T) {
	assert.NotEqual(t, GenerateRunID(), GenerateRunID())
}
