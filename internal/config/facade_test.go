package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mim3/salesdash/internal/metrics"
	"github.com/mim3/salesdash/internal/paths"
)

// isolate points the facade at a fresh base dir and clears the cache before
// and after the test.
func isolate(t *testing.T) string {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	t.Setenv(paths.EnvBaseDir, base)
	t.Setenv(paths.EnvInstallMode, "")
	t.Setenv(EnvConfigFile, "")
	Reset()
	t.Cleanup(Reset)
	return base
}

func TestFacade_ZeroConfiguration(t *testing.T) {
	base := isolate(t)

	s, err := Get()
	require.NoError(t, err)
	rp, err := ResolvedPaths()
	require.NoError(t, err)

	assert.Equal(t, base, rp.BaseDir)
	assert.Equal(t, paths.ModeTest, rp.Mode)
	assert.Equal(t, filepath.Join(base, "data", "sales_dashboard.db"), rp.DatabasePath)
	assert.Equal(t, "INFO", s.Log.Level)
	assert.Equal(t, rp.DatabasePath, s.Database.Path)
}

func TestFacade_Idempotent(t *testing.T) {
	isolate(t)

	a, err := Get()
	require.NoError(t, err)
	b, err := Get()
	require.NoError(t, err)
	assert.Same(t, a, b)

	pa, _ := ResolvedPaths()
	pb, _ := ResolvedPaths()
	assert.Same(t, pa, pb)

	// Sources are not re-read without Reset.
	t.Setenv("SALESDASH_LOG__LEVEL", "ERROR")
	c, err := Get()
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Equal(t, "INFO", c.Log.Level)
}

func TestFacade_ConcurrentFirstCall(t *testing.T) {
	isolate(t)
	before := testutil.ToFloat64(metrics.ConfigLoadsTotal)

	const callers = 32
	var (
		wg      sync.WaitGroup
		results [callers]*Settings
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			s, err := Get()
			if err == nil {
				results[i] = s
			}
		}(i)
	}
	close(start)
	wg.Wait()

	require.NotNil(t, results[0])
	for i := 1; i < callers; i++ {
		require.NotNil(t, results[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ConfigLoadsTotal))
}

func TestFacade_ResetRereadsSources(t *testing.T) {
	isolate(t)

	a, err := Get()
	require.NoError(t, err)

	t.Setenv("SALESDASH_LOG__LEVEL", "DEBUG")
	Reset()
	b, err := Get()
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, "DEBUG", b.Log.Level)
	assert.Equal(t, SourceEnv, b.Source("log.level"))
}

func TestFacade_InvalidValueIsFatalAndSticky(t *testing.T) {
	isolate(t)
	t.Setenv("SALESDASH_LOG__LEVEL", "VERBOSE")

	s, err := Get()
	assert.Nil(t, s)
	var ve *SettingsValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "log.level", ve.Field)
	assert.Equal(t, "VERBOSE", ve.Value)
	assert.True(t, IsConfigError(err))

	// Still failing without Reset, even after the environment is fixed.
	t.Setenv("SALESDASH_LOG__LEVEL", "INFO")
	_, err2 := Get()
	assert.Same(t, err, err2)

	Reset()
	_, err = Get()
	assert.NoError(t, err)
}

func TestFacade_OverrideFileCreatesDataDir(t *testing.T) {
	base := isolate(t)
	custom := filepath.Join(base, "shared", "sales-data")
	require.NoError(t, os.WriteFile(filepath.Join(base, ".env"),
		[]byte("SALESDASH_PATHS__DATA_DIR="+custom+"\n"), 0o644))

	rp, err := ResolvedPaths()
	require.NoError(t, err)
	assert.Equal(t, custom, rp.DataDir)
	assert.DirExists(t, custom)

	s := MustGet()
	assert.Equal(t, custom, s.Paths.DataDir)
	assert.Equal(t, SourceFile, s.Source(KeyDataDir))
}

func TestFacade_EnvBeatsOverrideFile(t *testing.T) {
	base := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, ".env"),
		[]byte("SALESDASH_LOG__LEVEL=WARNING\nSALESDASH_DASHBOARD__THEME=Dark\n"), 0o644))
	t.Setenv("SALESDASH_LOG__LEVEL", "ERROR")

	s, err := Get()
	require.NoError(t, err)
	assert.Equal(t, "ERROR", s.Log.Level)
	assert.Equal(t, "Dark", s.Dashboard.Theme)
}

func TestFacade_BadPathOverride(t *testing.T) {
	isolate(t)
	// No filesystem accepts a 300-byte path component.
	t.Setenv("SALESDASH_PATHS__LOG_DIR", filepath.Join("logs", strings.Repeat("x", 300)))

	_, err := Get()
	var pe *paths.PathResolutionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "log_dir", pe.Name)
	assert.True(t, IsConfigError(err))
	assert.False(t, IsConfigError(errors.New("other")))
}

func TestFacade_ResetRemovesOwnTempBase(t *testing.T) {
	isolate(t)
	t.Setenv(paths.EnvBaseDir, "")

	rp, err := ResolvedPaths()
	require.NoError(t, err)
	require.DirExists(t, rp.DataDir)

	Reset()
	assert.NoDirExists(t, rp.BaseDir)

	// A failed bootstrap still releases its temp base.
	t.Setenv("SALESDASH_LOG__LEVEL", "VERBOSE")
	_, err = Get()
	require.Error(t, err)
	snap := current.Load()
	require.NotNil(t, snap)
	require.NotEmpty(t, snap.tempBase)
	assert.DirExists(t, snap.tempBase)
	Reset()
	assert.NoDirExists(t, snap.tempBase)
}

func TestFacade_ResetKeepsPinnedBase(t *testing.T) {
	base := isolate(t)

	_, err := Get()
	require.NoError(t, err)
	Reset()
	assert.DirExists(t, base)
	assert.DirExists(t, filepath.Join(base, "data"))
}
