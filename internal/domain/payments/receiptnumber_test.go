package payments_test

import (
	"strings"
	"testing"
	"time"

	"shiksha/internal/domain/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptNumberGenerator(t *testing.T) {
	g, err := payments.NewReceiptNumberGenerator("test-salt")
	require.NoError(t, err)

	paidAt := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	first, err := g.Generate(42, paidAt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "RCP-"))

	// Same input encodes stably; a different timestamp gives a new number.
	again, err := g.Generate(42, paidAt)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := g.Generate(42, paidAt.Add(time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestValidMethod(t *testing.T) {
	assert.True(t, payments.ValidMethod(payments.MethodCash))
	assert.True(t, payments.ValidMethod(payments.MethodCard))
	assert.True(t, payments.ValidMethod(payments.MethodTransfer))
	assert.False(t, payments.ValidMethod("crypto"))
	assert.False(t, payments.ValidMethod(""))
}
