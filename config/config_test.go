package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelsplace/polyvox/voxel"
)

func TestLoadApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyvox.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
output = "out.mha"
spacing = 0.25
bounds = [0, 10, 0, 10, -1, 1]
reverse = true
foreground = 255
origin = "bounds"
compress = false
`), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out.mha", f.Output)
	require.NotNil(t, f.Compress)
	assert.False(t, *f.Compress)

	cfg, err := f.Apply(voxel.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Spacing)
	assert.Equal(t, []float64{0, 10, 0, 10, -1, 1}, cfg.Bounds)
	assert.True(t, cfg.Reverse)
	assert.Equal(t, uint8(255), cfg.Foreground)
	assert.Equal(t, uint8(voxel.DefaultBackground), cfg.Background)
	assert.Equal(t, voxel.OriginBoundsMin, cfg.Origin)
	require.NoError(t, cfg.Validate())
}

func TestApplyKeepsUnsetValues(t *testing.T) {
	f, err := Decode(strings.NewReader(`background = 3`))
	require.NoError(t, err)
	cfg, err := f.Apply(voxel.DefaultConfig().WithSpacing(2))
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Spacing)
	assert.Nil(t, cfg.Bounds)
	assert.Equal(t, uint8(3), cfg.Background)
	assert.Equal(t, uint8(voxel.DefaultForeground), cfg.Foreground)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", `voxel_size = 1`},
		{"wrong type", `spacing = "fine"`},
		{"syntax", `spacing = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, voxel.ErrConfig)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	for _, doc := range []string{`foreground = 256`, `background = -1`, `origin = "center"`} {
		f, err := Decode(strings.NewReader(doc))
		require.NoError(t, err, doc)
		_, err = f.Apply(voxel.DefaultConfig())
		assert.ErrorIs(t, err, voxel.ErrConfig, doc)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
