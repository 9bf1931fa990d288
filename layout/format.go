package layout

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SlotSize is the width of an EVM storage slot in bytes.
const SlotSize = 32

const typePrefix = "t_"

// ByteLength returns how many bytes a value type occupies in a slot. Only
// bool and uintN are known; everything else reports false.
func ByteLength(typ string) (int, bool) {
	typ = strings.TrimPrefix(typ, typePrefix)
	if typ == "bool" {
		return 1, true
	}
	bits, ok := strings.CutPrefix(typ, "uint")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(bits)
	if err != nil || n/8 <= 0 {
		return 0, false
	}
	return n / 8, true
}

// Row is a member placed in its slot, counting bytes from the left.
type Row struct {
	Slot           Slot
	OffsetFromLeft int
	End            int
	Label          string
}

// NewRow converts a member's right-relative offset. It returns false when
// the member's length is unknown.
func NewRow(m Member) (Row, bool) {
	length, ok := ByteLength(m.Type)
	if !ok {
		return Row{}, false
	}
	from := SlotSize - m.Offset - length
	return Row{
		Slot:           m.Slot,
		OffsetFromLeft: from,
		End:            from + length,
		Label:          m.Label,
	}, true
}

// SlotGroup holds the rows of one slot in left to right order.
type SlotGroup struct {
	Slot Slot
	Rows []Row
}

// Group places members into slots, keeping slots in the order they are first
// seen. solc lists the members of a slot from the right, so each slot's rows
// are reversed. Members of unknown length are returned separately.
func Group(members []Member) (groups []SlotGroup, skipped []Member) {
	index := make(map[Slot]int)
	for _, m := range members {
		row, ok := NewRow(m)
		if !ok {
			skipped = append(skipped, m)
			continue
		}
		i, ok := index[row.Slot]
		if !ok {
			i = len(groups)
			index[row.Slot] = i
			groups = append(groups, SlotGroup{Slot: row.Slot})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	for _, g := range groups {
		for i, j := 0, len(g.Rows)-1; i < j; i, j = i+1, j-1 {
			g.Rows[i], g.Rows[j] = g.Rows[j], g.Rows[i]
		}
	}
	return groups, skipped
}

// Report is everything printed for one struct.
type Report struct {
	Contract  string
	Struct    string
	Slots     []SlotGroup
	Skipped   []Member
	Locations []StorageVariable
}

func NewReport(contract string, s *Struct) *Report {
	groups, skipped := Group(s.Members)
	return &Report{
		Contract:  contract,
		Struct:    s.Name,
		Slots:     groups,
		Skipped:   skipped,
		Locations: s.Locations,
	}
}

// Print writes the member table. With locate set, the state variables
// holding the struct are listed too.
func (r *Report) Print(w io.Writer, locate bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Struct %s in %s\n", r.Struct, r.Contract)
	b.WriteString("Members:\n")
	for _, g := range r.Slots {
		for _, row := range g.Rows {
			fmt.Fprintf(&b, "  Slot %s @ [%d:%d] | %s\n", row.Slot, row.OffsetFromLeft, row.End, row.Label)
		}
	}
	if locate && len(r.Locations) > 0 {
		b.WriteString("Storage:\n")
		for _, v := range r.Locations {
			if key, ok := v.Slot.Key(); ok {
				fmt.Fprintf(&b, "  %s @ slot %s (%s)\n", v.Label, v.Slot, key.Hex())
			} else {
				fmt.Fprintf(&b, "  %s @ slot %s\n", v.Label, v.Slot)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
