package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListOrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"002_fotos.sql": {Data: []byte("SELECT 1;")},
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("docs")},
	}

	got, err := List(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: "001", Name: "001_init.sql"},
		{Version: "002", Name: "002_fotos.sql"},
	}, got)
}

func TestListRejectsDuplicateVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"001_other.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := List(fsys)
	require.Error(t, err)
}

func TestBundledMigrationsAreListed(t *testing.T) {
	got, err := List(Files())
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "001", got[0].Version)
}
