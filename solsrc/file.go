package solsrc

// In-memory representation of a single struct field, as written in source
// (e.g. "uint128 maxTotalSupply")
type Field string

// In-memory representation of a single struct definition
type Struct struct {
	Name   string
	Fields []Field
}

// In-memory representation of a solidity file declaring at least one struct
type File struct {
	Path    string
	Structs []*Struct
}
