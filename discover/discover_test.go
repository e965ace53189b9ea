package discover

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFs(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(f), 0o755))
		require.NoError(t, afero.WriteFile(fs, f, []byte("{}"), 0o644))
	}
	return fs
}

func TestWalk(t *testing.T) {
	fs := newFs(t,
		"/sxplr/src/api/request/sxplr.loadLayers__toSxplr__request.json",
		"/sxplr/src/api/broadcast/sxplr.on.allRegions__fromSxplr__request.json",
		"/sxplr/src/api/request/sxplr.getAllAtlases__toSxplr__response.json",
		"/sxplr/src/api/README.md",
		"/sxplr/src/app/ignored.json",
		"/sxplr/src/api/types.json",
		"/sxplr/src/api/LEGACY.JSON",
	)

	list, err := Walk(fs, "/sxplr")
	require.NoError(t, err)

	var rels []string
	for _, s := range list {
		rels = append(rels, s.Rel)
		assert.Equal(t, filepath.Join("/sxplr/src/api", s.Rel), s.Path)
	}
	assert.Equal(t, []string{
		"broadcast/sxplr.on.allRegions__fromSxplr__request.json",
		"request/sxplr.getAllAtlases__toSxplr__response.json",
		"request/sxplr.loadLayers__toSxplr__request.json",
		"types.json",
	}, rels)
}

func TestWalk_NoAPIDir(t *testing.T) {
	fs := newFs(t, "/sxplr/src/app/main.json")

	_, err := Walk(fs, "/sxplr")
	assert.ErrorIs(t, err, ErrNoAPIDir)
}

func TestWalk_APIDirIsFile(t *testing.T) {
	fs := newFs(t, "/sxplr/src/api")

	_, err := Walk(fs, "/sxplr")
	assert.ErrorIs(t, err, ErrNoAPIDir)
}

func TestWalk_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/sxplr/src/api", 0o755))

	list, err := Walk(fs, "/sxplr")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIsSchema(t *testing.T) {
	assert.True(t, IsSchema("a.json"))
	assert.False(t, IsSchema("A.JSON"))
	assert.False(t, IsSchema("a.yaml"))
	assert.False(t, IsSchema("json"))
}
