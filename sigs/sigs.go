// Package sigs computes the selectors of everything in a contract's ABI.
package sigs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/afero"
)

var ErrAbiMissing = errors.New("no abi found")

type Kind int

const (
	Function Kind = iota
	Event
	Error
)

func (k Kind) String() string {
	switch k {
	case Function:
		return "Functions"
	case Event:
		return "Events"
	case Error:
		return "Errors"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Signature struct {
	Kind      Kind
	Signature string
	// Selector is 4 bytes for functions and errors, the full topic for events.
	Selector []byte
}

// Selector hashes a canonical signature such as "transfer(address,uint256)".
func Selector(kind Kind, sig string) []byte {
	hash := crypto.Keccak256([]byte(sig))
	if kind == Event {
		return hash
	}
	return hash[:4]
}

// FromABI lists the functions, events and errors of a parsed ABI, sorted by
// kind then signature.
func FromABI(parsed abi.ABI) []Signature {
	var out []Signature
	for _, m := range parsed.Methods {
		out = append(out, Signature{Kind: Function, Signature: m.Sig, Selector: Selector(Function, m.Sig)})
	}
	for _, e := range parsed.Events {
		out = append(out, Signature{Kind: Event, Signature: e.Sig, Selector: Selector(Event, e.Sig)})
	}
	for _, e := range parsed.Errors {
		out = append(out, Signature{Kind: Error, Signature: e.Sig, Selector: Selector(Error, e.Sig)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Signature < out[j].Signature
	})
	return out
}

// FromArtifact reads the `abi` array of a forge artifact.
func FromArtifact(fs afero.Fs, artifactPath string) ([]Signature, error) {
	data, err := afero.ReadFile(fs, artifactPath)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var artifact struct {
		Abi json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode %s: %w", artifactPath, err)
	}
	if len(artifact.Abi) == 0 || bytes.Equal(artifact.Abi, []byte("null")) {
		return nil, fmt.Errorf("%w in %s", ErrAbiMissing, artifactPath)
	}
	parsed, err := abi.JSON(bytes.NewReader(artifact.Abi))
	if err != nil {
		return nil, fmt.Errorf("parse abi of %s: %w", artifactPath, err)
	}
	return FromABI(parsed), nil
}

// Print writes one section per kind, skipping empty ones.
func Print(w io.Writer, artifactPath string, sigs []Signature) error {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", artifactPath)
	for i, s := range sigs {
		if i == 0 || sigs[i-1].Kind != s.Kind {
			fmt.Fprintf(&b, "%s:\n", s.Kind)
		}
		fmt.Fprintf(&b, "  %s %s\n", s.Signature, hexutil.Encode(s.Selector))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
