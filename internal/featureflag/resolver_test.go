package featureflag_test

import (
	"os"
	"path/filepath"
	"testing"

	"go-recruitment-datalayer/internal/featureflag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	flags := featureflag.NewStatic("candidates", " Jobs ")

	t.Run("migrated families", func(t *testing.T) {
		assert.True(t, flags.IsMigrated("candidates"))
		assert.True(t, flags.IsMigrated("jobs"))
	})

	t.Run("unknown family fails closed", func(t *testing.T) {
		assert.NotPanics(t, func() {
			assert.False(t, flags.IsMigrated("unknownFamily"))
		})
	})

	t.Run("nil snapshot fails closed", func(t *testing.T) {
		var nilFlags *featureflag.Static
		assert.False(t, nilFlags.IsMigrated("candidates"))
	})

	assert.Equal(t, []string{"candidates", "jobs"}, flags.Migrated())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	content := "families:\n  applications: true\n  candidates: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	flags, err := featureflag.Load([]string{"candidates", "profiles"}, path)
	require.NoError(t, err)

	assert.True(t, flags.IsMigrated("applications"))
	assert.True(t, flags.IsMigrated("profiles"))
	assert.False(t, flags.IsMigrated("candidates"), "file overrides the list")

	t.Run("missing file", func(t *testing.T) {
		_, err := featureflag.Load(nil, filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
