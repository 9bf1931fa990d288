package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Locate finds the forge artifact of a resolved contract. Forge mirrors only a
// trailing part of the source path under its output directory, so suffixes of
// the source path are tried from the shortest (the file name) to the longest.
func (r *Resolver) Locate(contract ResolvedContract) (string, error) {
	components := strings.Split(filepath.ToSlash(contract.AbsoluteSourcePath), "/")
	candidate := ""
	for i := len(components) - 1; i >= 0; i-- {
		if components[i] == "" {
			continue
		}
		candidate = filepath.Join(components[i], candidate)
		path := filepath.Join(r.cfg.OutDir, candidate, contract.ContractName+".json")
		exists, err := r.isFile(path)
		if err != nil {
			return "", err
		}
		r.logger.Debug("artifact candidate", zap.String("path", path), zap.Bool("exists", exists))
		if exists {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w for %s", ErrArtifactNotFound, contract)
}
