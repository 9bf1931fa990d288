// Package config resolves where the foundry project lives and where its
// sources and build output are.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// FoundryConfig is the name of the foundry project file.
	FoundryConfig = "foundry.toml"

	DefaultSrc     = "src"
	DefaultOut     = "out"
	DefaultProfile = "default"

	// EnvPrefix prefixes the environment variables bound by Load, e.g. STORAGEPOS_ROOT.
	EnvPrefix = "storagepos"

	// StorageLayoutOutput is the extra_output entry forge needs to emit storage layouts.
	StorageLayoutOutput = "storageLayout"
)

// Keys understood by Load.
const (
	KeyRoot = "root"
	KeySrc  = "src"
	KeyOut  = "out"
)

// Config is passed explicitly to every stage of the pipeline.
type Config struct {
	// ProjectRoot is the absolute path of the foundry project.
	ProjectRoot string
	// SrcDir is the absolute path of the solidity sources.
	SrcDir string
	// OutDir is the absolute path of the forge build output.
	OutDir string
	// WorkDir is used to make relative contract paths absolute.
	WorkDir string
	// Profile is the foundry profile the settings were read from.
	Profile string
	// ExtraOutput lists the extra_output entries found in foundry.toml, if any.
	ExtraOutput []string
}

// Default returns the layout forge uses when foundry.toml is silent.
func Default(root, workDir string) Config {
	return Config{
		ProjectRoot: root,
		SrcDir:      filepath.Join(root, DefaultSrc),
		OutDir:      filepath.Join(root, DefaultOut),
		WorkDir:     workDir,
		Profile:     DefaultProfile,
	}
}

// EmitsStorageLayout reports whether foundry.toml asked forge for storage layouts.
// It returns true when the project file could not tell either way.
func (c Config) EmitsStorageLayout() bool {
	if c.ExtraOutput == nil {
		return true
	}
	for _, o := range c.ExtraOutput {
		if strings.EqualFold(o, StorageLayoutOutput) {
			return true
		}
	}
	return false
}

// FindRoot returns the nearest ancestor of dir (dir included) holding a foundry.toml.
func FindRoot(fs afero.Fs, dir string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		if ok, _ := afero.Exists(fs, filepath.Join(dir, FoundryConfig)); ok {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ExecutableRoot returns the directory above the one holding the running binary.
func ExecutableRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(filepath.Dir(exe)), nil
}

// Load merges flags and environment already bound to v with the project's
// foundry.toml. fallbackRoot is used when neither v nor the working directory
// point at a project.
func Load(fs afero.Fs, v *viper.Viper, workDir, fallbackRoot string) (Config, error) {
	root := v.GetString(KeyRoot)
	if root == "" {
		if found, ok := FindRoot(fs, workDir); ok {
			root = found
		} else {
			root = fallbackRoot
		}
	}
	if root == "" {
		return Config{}, errors.New("project root could not be determined, pass --root")
	}
	root = absolute(workDir, root)

	cfg := Default(root, workDir)
	if profile := os.Getenv("FOUNDRY_PROFILE"); profile != "" {
		cfg.Profile = profile
	}

	foundry, err := readFoundry(fs, filepath.Join(root, FoundryConfig))
	if err != nil {
		return Config{}, err
	}
	if foundry != nil {
		if key, ok := profileKey(foundry, cfg.Profile, "src"); ok {
			cfg.SrcDir = absolute(root, foundry.GetString(key))
		}
		if key, ok := profileKey(foundry, cfg.Profile, "out"); ok {
			cfg.OutDir = absolute(root, foundry.GetString(key))
		}
		if key, ok := profileKey(foundry, cfg.Profile, "extra_output"); ok {
			// An empty list still means storage layouts were not requested.
			cfg.ExtraOutput = append([]string{}, foundry.GetStringSlice(key)...)
		}
	}

	if src := v.GetString(KeySrc); src != "" {
		cfg.SrcDir = absolute(root, src)
	}
	if out := v.GetString(KeyOut); out != "" {
		cfg.OutDir = absolute(root, out)
	}
	return cfg, nil
}

// NewViper returns a viper instance reading STORAGEPOS_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{KeyRoot, KeySrc, KeyOut} {
		// BindEnv only fails without a key.
		_ = v.BindEnv(key)
	}
	return v
}

// profileKey finds key in the active profile, falling back to the default
// profile the way forge does.
func profileKey(f *viper.Viper, profile, key string) (string, bool) {
	for _, p := range []string{profile, DefaultProfile} {
		k := "profile." + p + "." + key
		if f.IsSet(k) {
			return k, true
		}
	}
	return "", false
}

func readFoundry(fs afero.Fs, path string) (*viper.Viper, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return nil, nil
	}
	f := viper.New()
	f.SetFs(fs)
	f.SetConfigFile(path)
	f.SetConfigType("toml")
	if err := f.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

func absolute(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
