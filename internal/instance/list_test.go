package instance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trly/portinus/internal/testutil"
)

func TestList(t *testing.T) {
	settings := testutil.NewSettings(t)
	for _, dir := range []string{"wiki", "blog", ".blog-123456", "web app"} {
		require.NoError(t, os.MkdirAll(filepath.Join(settings.ServiceRoot, dir), 0755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(settings.ServiceRoot, "blog.environment"), []byte("A=1"), 0600))

	names, err := List(settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "wiki"}, names)
}

func TestListMissingServiceRoot(t *testing.T) {
	settings := testutil.NewSettings(t)
	settings.ServiceRoot = filepath.Join(t.TempDir(), "missing")

	names, err := List(settings)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestInstalled(t *testing.T) {
	settings := testutil.NewSettings(t)
	require.NoError(t, os.MkdirAll(filepath.Join(settings.ServiceRoot, "wiki"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(settings.ServiceRoot, "blog.environment"), []byte("A=1"), 0600))

	assert.True(t, Installed(settings, "wiki"))
	assert.False(t, Installed(settings, "blog"))
	assert.False(t, Installed(settings, "blog.environment"))
}
