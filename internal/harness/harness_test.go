package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario files found")

	for _, path := range paths {
		sc, err := LoadScenario(path)
		require.NoError(t, err, path)
		t.Run(sc.Name, func(t *testing.T) {
			RunWithGolden(t, sc)
		})
	}
}

func TestLoadScenario_RequiresName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: no name\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/absent.yaml")
	require.Error(t, err)
}
