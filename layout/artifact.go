// Package layout reads solc storage layouts out of forge artifacts and
// renders struct packing as left-relative byte ranges.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Artifact is the part of a forge build artifact this package reads.
type Artifact struct {
	StorageLayout *StorageLayout `json:"storageLayout"`
}

// StorageLayout is solc's `storageLayout` output.
type StorageLayout struct {
	Storage []StorageVariable    `json:"storage"`
	Types   map[string]TypeEntry `json:"types"`
}

// StorageVariable is a top level state variable of a contract.
type StorageVariable struct {
	Label  string `json:"label"`
	Slot   Slot   `json:"slot"`
	Offset int    `json:"offset"`
	Type   string `json:"type"`
}

// TypeEntry describes one type referenced from the layout, keyed by type id.
type TypeEntry struct {
	Encoding      string   `json:"encoding"`
	Label         string   `json:"label"`
	NumberOfBytes string   `json:"numberOfBytes"`
	Members       []Member `json:"members"`
}

// Member is a struct field. Offset counts bytes from the right end of the slot.
type Member struct {
	Slot   Slot   `json:"slot"`
	Offset int    `json:"offset"`
	Label  string `json:"label"`
	Type   string `json:"type"`
}

// Slot is a storage slot index. solc emits it as a decimal string, since
// slots of mappings and dynamic arrays exceed any fixed width integer.
type Slot string

func (s *Slot) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Slot(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("slot %s: %w", data, err)
	}
	*s = Slot(n.String())
	return nil
}

// Big parses the slot index.
func (s Slot) Big() (*big.Int, bool) {
	return new(big.Int).SetString(string(s), 10)
}

// Key returns the 32 byte storage key of the slot.
func (s Slot) Key() (common.Hash, bool) {
	n, ok := s.Big()
	if !ok || n.Sign() < 0 {
		return common.Hash{}, false
	}
	return common.BigToHash(n), true
}
