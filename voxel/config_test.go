package voxel

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"default", DefaultConfig(), ""},
		{"zero spacing", DefaultConfig().WithSpacing(0), "spacing"},
		{"negative spacing", DefaultConfig().WithSpacing(-1), "spacing"},
		{"nan spacing", DefaultConfig().WithSpacing(math.NaN()), "spacing"},
		{"inf spacing", DefaultConfig().WithSpacing(math.Inf(1)), "spacing"},
		{"five bounds", DefaultConfig().WithBounds(0, 1, 0, 1, 0), "bounds"},
		{"six bounds", DefaultConfig().WithBounds(0, 1, 0, 1, 0, 1), ""},
		{"non-finite bound", DefaultConfig().WithBounds(0, 1, 0, math.Inf(1), 0, 1), "bounds"},
		{"same values", Config{Spacing: 1, Foreground: 3, Background: 3}, "values"},
		{"bad origin", Config{Spacing: 1, Foreground: 1, Origin: OriginMode(7)}, "origin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrConfig)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestConfigWithBoundsCopies(t *testing.T) {
	b := []float64{0, 1, 0, 1, 0, 1}
	cfg := DefaultConfig().WithBounds(b...)
	b[0] = 99
	assert.Equal(t, 0.0, cfg.Bounds[0])
}

func TestParseOriginMode(t *testing.T) {
	for in, want := range map[string]OriginMode{"": OriginZero, "zero": OriginZero, "bounds": OriginBoundsMin, "min": OriginBoundsMin} {
		got, err := ParseOriginMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseOriginMode("center")
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, "bounds", OriginBoundsMin.String())
}
