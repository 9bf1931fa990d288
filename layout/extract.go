package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrLayoutMissing   = errors.New("no storage layout found")
	ErrStructNotFound  = errors.New("struct not found")
	ErrAmbiguousStruct = errors.New("struct label matches multiple types")
)

// Struct is a struct type picked out of an artifact's storage layout.
type Struct struct {
	Name    string
	TypeID  string
	Members []Member
	// Locations are the contract's state variables of this struct type.
	Locations []StorageVariable
}

// Load reads a forge artifact and checks it carries a storage layout.
func Load(fs afero.Fs, artifactPath string) (*StorageLayout, error) {
	data, err := afero.ReadFile(fs, artifactPath)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode %s: %w", artifactPath, err)
	}
	if artifact.StorageLayout == nil || artifact.StorageLayout.Types == nil {
		return nil, fmt.Errorf(`%w in %s, make sure foundry.toml has extra_output = ["storageLayout"]`,
			ErrLayoutMissing, artifactPath)
	}
	return artifact.StorageLayout, nil
}

// Extract loads the artifact and returns the members of the named struct.
// Struct names are matched case-insensitively.
func Extract(fs afero.Fs, artifactPath, structName string) (*Struct, error) {
	storage, err := Load(fs, artifactPath)
	if err != nil {
		return nil, err
	}
	s, err := storage.Struct(structName)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, artifactPath)
	}
	return s, nil
}

// Struct finds the type labelled `struct <name>`.
func (l *StorageLayout) Struct(name string) (*Struct, error) {
	want := "struct " + strings.ToLower(name)
	var ids []string
	for id, entry := range l.Types {
		if strings.ToLower(entry.Label) == want {
			ids = append(ids, id)
		}
	}
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrStructNotFound, name)
	case 1:
	default:
		sort.Strings(ids)
		return nil, fmt.Errorf("%w: %s (%s)", ErrAmbiguousStruct, name, strings.Join(ids, ", "))
	}

	id := ids[0]
	out := &Struct{
		Name:    name,
		TypeID:  id,
		Members: l.Types[id].Members,
	}
	for _, v := range l.Storage {
		if v.Type == id {
			out.Locations = append(out.Locations, v)
		}
	}
	return out, nil
}
