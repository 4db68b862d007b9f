package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/pathindex/store"
)

func testConfig(mode, storeKind string) config {
	return config{
		mode:       mode,
		files:      32,
		fileSize:   64,
		dirCount:   4,
		store:      storeKind,
		prefix:     "dir00",
		iterations: 3,
		randomSeed: 1,
	}
}

func TestScanFileStoreClosed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig("scan", "file")
	_, err := makeFiles(filepath.Join(dir, "tree"), cfg.files, cfg.fileSize, cfg.dirCount, cfg.pattern, cfg.randomSeed)
	require.NoError(t, err)

	res, err := scan(context.Background(), cfg, filepath.Join(dir, "tree"), dir, 0)
	require.NoError(t, err)
	require.IsType(t, &store.FileStore{}, res.Store)

	require.NoError(t, closeStore(res.Store))
	_, err = res.Store.Write([]byte("x"))
	assert.ErrorIs(t, err, store.ErrClosed)

	assert.NoError(t, closeStore(store.NewMemStore()))
}

func TestRunProfileModes(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"scan", "get", "get-cold", "scan-prefix", "attach"} {
		for _, storeKind := range []string{"mem", "file"} {
			t.Run(mode+"/"+storeKind, func(t *testing.T) {
				t.Parallel()
				dir := t.TempDir()
				cfg := testConfig(mode, storeKind)
				paths, err := makeFiles(filepath.Join(dir, "tree"), cfg.files, cfg.fileSize, cfg.dirCount, cfg.pattern, cfg.randomSeed)
				require.NoError(t, err)

				stats, err := runProfile(cfg, paths, dir)
				require.NoError(t, err)
				assert.Equal(t, cfg.iterations, stats.ops)
			})
		}
	}

	_, err := runProfile(testConfig("bogus", "mem"), nil, t.TempDir())
	assert.Error(t, err)
}
