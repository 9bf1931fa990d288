package config_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jshufro/storagepos/config"
)

const foundryToml = `
[profile.default]
src = "contracts"
out = "build"
extra_output = ["storageLayout"]

[profile.ci]
out = "ci-out"
extra_output = ["metadata"]
`

func TestLoadDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/proj")
	require.NoError(t, fs.MkdirAll(filepath.Join(root, "src"), 0o755))

	cfg, err := config.Load(fs, config.NewViper(), filepath.Join(root, "src"), root)
	require.NoError(t, err)
	require.Equal(t, root, cfg.ProjectRoot)
	require.Equal(t, filepath.Join(root, "src"), cfg.SrcDir)
	require.Equal(t, filepath.Join(root, "out"), cfg.OutDir)
	require.True(t, cfg.EmitsStorageLayout())
}

func TestLoadFoundryToml(t *testing.T) {
	t.Setenv("FOUNDRY_PROFILE", "")
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/proj")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, config.FoundryConfig), []byte(foundryToml), 0o600))
	work := filepath.Join(root, "contracts", "nested")
	require.NoError(t, fs.MkdirAll(work, 0o755))

	cfg, err := config.Load(fs, config.NewViper(), work, "")
	require.NoError(t, err)
	require.Equal(t, root, cfg.ProjectRoot)
	require.Equal(t, filepath.Join(root, "contracts"), cfg.SrcDir)
	require.Equal(t, filepath.Join(root, "build"), cfg.OutDir)
	require.True(t, cfg.EmitsStorageLayout())
}

func TestLoadFoundryProfile(t *testing.T) {
	t.Setenv("FOUNDRY_PROFILE", "ci")
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/proj")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, config.FoundryConfig), []byte(foundryToml), 0o600))

	cfg, err := config.Load(fs, config.NewViper(), root, "")
	require.NoError(t, err)
	require.Equal(t, "ci", cfg.Profile)
	// src is not set for ci, so it comes from the default profile.
	require.Equal(t, filepath.Join(root, "contracts"), cfg.SrcDir)
	require.Equal(t, filepath.Join(root, "ci-out"), cfg.OutDir)
	require.False(t, cfg.EmitsStorageLayout())
}

func TestLoadFoundryProfileFallsBack(t *testing.T) {
	t.Setenv("FOUNDRY_PROFILE", "fuzz")
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/proj")
	content := foundryToml + "\n[profile.fuzz]\nfuzz = { runs = 10000 }\n"
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, config.FoundryConfig), []byte(content), 0o600))

	cfg, err := config.Load(fs, config.NewViper(), root, "")
	require.NoError(t, err)
	require.Equal(t, "fuzz", cfg.Profile)
	require.Equal(t, filepath.Join(root, "contracts"), cfg.SrcDir)
	require.Equal(t, filepath.Join(root, "build"), cfg.OutDir)
	require.Equal(t, []string{"storageLayout"}, cfg.ExtraOutput)
	require.True(t, cfg.EmitsStorageLayout())
}

func TestLoadUnknownProfile(t *testing.T) {
	t.Setenv("FOUNDRY_PROFILE", "missing")
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/proj")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, config.FoundryConfig), []byte(foundryToml), 0o600))

	cfg, err := config.Load(fs, config.NewViper(), root, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "contracts"), cfg.SrcDir)
	require.Equal(t, filepath.Join(root, "build"), cfg.OutDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FOUNDRY_PROFILE", "")
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/proj")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, config.FoundryConfig), []byte(foundryToml), 0o600))

	v := config.NewViper()
	v.Set(config.KeyRoot, root)
	v.Set(config.KeyOut, "artifacts")
	cfg, err := config.Load(fs, v, filepath.FromSlash("/elsewhere"), "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "contracts"), cfg.SrcDir)
	require.Equal(t, filepath.Join(root, "artifacts"), cfg.OutDir)
}

func TestLoadEnv(t *testing.T) {
	root := filepath.FromSlash("/env-root")
	t.Setenv("STORAGEPOS_ROOT", root)
	t.Setenv("STORAGEPOS_SRC", "lib")

	cfg, err := config.Load(afero.NewMemMapFs(), config.NewViper(), filepath.FromSlash("/"), "")
	require.NoError(t, err)
	require.Equal(t, root, cfg.ProjectRoot)
	require.Equal(t, filepath.Join(root, "lib"), cfg.SrcDir)
}

func TestLoadNoRoot(t *testing.T) {
	_, err := config.Load(afero.NewMemMapFs(), config.NewViper(), filepath.FromSlash("/"), "")
	require.Error(t, err)
}

func TestFindRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := filepath.FromSlash("/a/b")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(root, config.FoundryConfig), nil, 0o600))

	got, ok := config.FindRoot(fs, filepath.Join(root, "c", "d"))
	require.True(t, ok)
	require.Equal(t, root, got)

	_, ok = config.FindRoot(fs, filepath.FromSlash("/a"))
	require.False(t, ok)
}
