// Package project maps a contract identifier to its solidity source and to
// the forge artifact built from it.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jshufro/storagepos/config"
)

// SourceExt is the suffix of solidity source files.
const SourceExt = ".sol"

var (
	ErrContractNotFound  = errors.New("contract not found")
	ErrAmbiguousContract = errors.New("multiple files found")
	ErrArtifactNotFound  = errors.New("failed to find forge output JSON")
)

// ResolvedContract is a contract pinned to the source file declaring it.
type ResolvedContract struct {
	AbsoluteSourcePath string
	ContractName       string
}

func (r ResolvedContract) String() string {
	return r.AbsoluteSourcePath + ":" + r.ContractName
}

type Opt func(*Resolver)

func WithLogger(logger *zap.Logger) Opt {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver finds contracts in a project's source tree and their artifacts in
// its output directory.
type Resolver struct {
	fs     afero.Fs
	cfg    config.Config
	logger *zap.Logger
}

func NewResolver(fs afero.Fs, cfg config.Config, opts ...Opt) *Resolver {
	r := &Resolver{
		fs:     fs,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve accepts `path:Name`, a path to a .sol file, or a bare contract name.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (ResolvedContract, error) {
	var out ResolvedContract
	switch {
	case strings.Contains(identifier, ":"):
		rawPath, name, _ := strings.Cut(identifier, ":")
		out.AbsoluteSourcePath = r.absolute(rawPath)
		out.ContractName = name
	case strings.Contains(identifier, SourceExt):
		base := filepath.Base(identifier)
		out.AbsoluteSourcePath = r.absolute(identifier)
		out.ContractName = strings.TrimSuffix(base, filepath.Ext(base))
	default:
		out.AbsoluteSourcePath = filepath.Join(r.cfg.SrcDir, identifier+SourceExt)
		out.ContractName = identifier
	}

	exists, err := r.isFile(out.AbsoluteSourcePath)
	if err != nil {
		return ResolvedContract{}, err
	}
	if exists {
		r.logger.Debug("resolved contract", zap.Stringer("contract", out))
		return out, nil
	}

	r.logger.Debug("searching source tree",
		zap.String("dir", r.cfg.SrcDir),
		zap.String("file", filepath.Base(out.AbsoluteSourcePath)),
	)
	found, err := FindFile(ctx, r.fs, r.cfg.SrcDir, filepath.Base(out.AbsoluteSourcePath))
	if err != nil {
		return ResolvedContract{}, err
	}
	switch len(found) {
	case 0:
		return ResolvedContract{}, fmt.Errorf("%w: %s", ErrContractNotFound, identifier)
	case 1:
		out.AbsoluteSourcePath = found[0]
		r.logger.Debug("resolved contract", zap.Stringer("contract", out))
		return out, nil
	default:
		return ResolvedContract{}, fmt.Errorf("%w for %s: %s",
			ErrAmbiguousContract, identifier, strings.Join(found, ", "))
	}
}

func (r *Resolver) absolute(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.cfg.WorkDir, p)
}

func (r *Resolver) isFile(path string) (bool, error) {
	info, err := r.fs.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// FindFile walks dir and returns every regular file called name, in lexical order.
func FindFile(ctx context.Context, fs afero.Fs, dir, name string) ([]string, error) {
	var found []string
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.IsDir() && info.Name() == name {
			found = append(found, path)
		}
		return nil
	})
	switch {
	case errors.Is(err, os.ErrNotExist) && len(found) == 0:
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("search %s: %w", dir, err)
	}
	return found, nil
}
