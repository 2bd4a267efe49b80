package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	profiles := Builtin()
	require.Len(t, profiles, 2)

	first := profiles[0]
	assert.Equal(t, []string{"il_conformance"}, first.Drop1)
	assert.Equal(t, []string{"runtime_81018", "runtime_81019", "runtime_81081"}, first.Drop2)
	assert.Equal(t, []string{"b598031", "github_26491", "b323557_il"}, first.Canon)

	second := profiles[1]
	assert.Empty(t, second.Drop1)
	assert.Empty(t, second.Drop2)
	assert.Empty(t, second.Canon)
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	validConfig := `
profiles:
  - drop1: [il_conformance]
    drop2: [runtime_81018]
    canon: [b598031]
  - drop1: []
    drop2: []
    canon: []
`
	configPath := filepath.Join(tmpDir, "profiles.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(validConfig), 0644))

	profiles, err := Load(configPath)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, []string{"il_conformance"}, profiles[0].Drop1)
	assert.Equal(t, []string{"b598031"}, profiles[0].Canon)
	assert.Empty(t, profiles[1].Drop2)
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "malformed yaml",
			content: "profiles: [drop1",
		},
		{
			name:    "no profiles",
			content: "profiles: []",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(tmpDir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestSelect(t *testing.T) {
	profiles := Builtin()

	first, err := Select(profiles, false)
	require.NoError(t, err)
	assert.Equal(t, profiles[0], first)

	second, err := Select(profiles, true)
	require.NoError(t, err)
	assert.Equal(t, profiles[1], second)

	_, err = Select(profiles[:1], true)
	assert.Error(t, err)
}
