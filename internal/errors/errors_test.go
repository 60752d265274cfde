package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.GetTimestamp().IsZero())
}

func TestBuilderContext(t *testing.T) {
	t.Parallel()

	ee := Newf("species %q not found", "thon").
		Component("species").
		Category(CategoryNotFound).
		Context("code", "thon").
		Priority(PriorityHigh).
		Build()

	assert.Equal(t, "species", ee.GetComponent())
	assert.Equal(t, PriorityHigh, ee.GetPriority())
	assert.Equal(t, map[string]any{"code": "thon"}, ee.GetContext())
	assert.True(t, IsNotFound(ee))
	assert.False(t, IsValidation(ee))

	// Returned context is a copy
	ctxCopy := ee.GetContext()
	ctxCopy["code"] = "changed"
	assert.Equal(t, "thon", ee.GetContext()["code"])
}

func TestInvalidPriorityFallsBackToMedium(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("x")).Priority("urgent").Build()
	assert.Equal(t, PriorityMedium, ee.GetPriority())
}

func TestDetectCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"deadline", context.DeadlineExceeded, CategoryTimeout},
		{"canceled", context.Canceled, CategoryCancellation},
		{"connection", fmt.Errorf("connection refused"), CategoryNetwork},
		{"invalid", fmt.Errorf("invalid sample"), CategoryValidation},
		{"wrapped enhanced", fmt.Errorf("outer: %w", New(fmt.Errorf("inner")).Category(CategoryOceanData).Build()), CategoryOceanData},
		{"other", fmt.Errorf("boom"), CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.err).Build().Category)
		})
	}
}

func TestNetworkErrorContext(t *testing.T) {
	t.Parallel()

	ee := NetworkError(fmt.Errorf("unreachable"), "https://example.org/erddap?key=secret", 5*time.Second)

	require.Equal(t, CategoryNetwork, ee.Category)
	ctx := ee.GetContext()
	assert.Equal(t, "https-endpoint", ctx["url_category"])
	assert.InDelta(t, 5.0, ctx["timeout_seconds"], 0.001)
}

func TestIsMatchesCategory(t *testing.T) {
	t.Parallel()

	a := ValidationError("count below minimum")
	b := ValidationError("size must be positive")

	assert.True(t, Is(a, b), "errors of the same category should match")
	assert.False(t, Is(a, New(fmt.Errorf("x")).Category(CategoryNetwork).Build()))
}
