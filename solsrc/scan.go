// Package solsrc lists the struct definitions found in solidity sources.
package solsrc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// Matches the name and body of a struct. Bodies never nest braces in solidity.
var structPattern = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

// Parse the structs declared in a single solidity file
func parseFile(path string, content string) *File {
	out := &File{Path: path}
	for _, m := range structPattern.FindAllStringSubmatch(content, -1) {
		s := &Struct{Name: m[1]}
		for _, field := range strings.Split(m[2], ";") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			s.Fields = append(s.Fields, Field(field))
		}
		out.Structs = append(out.Structs, s)
	}
	return out
}

// Scan walks dir and parses every .sol file. Files without structs are omitted.
func Scan(ctx context.Context, fs afero.Fs, dir string) ([]*File, error) {
	var out []*File
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".sol" {
			return nil
		}
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}
		if f := parseFile(path, string(content)); len(f.Structs) > 0 {
			out = append(out, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return out, nil
}

// Print writes files in the same order they were scanned
func Print(w io.Writer, files []*File) error {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "\nFile: %s\n", f.Path)
		for _, s := range f.Structs {
			fmt.Fprintf(&b, "  Struct: %s\n", s.Name)
			for _, field := range s.Fields {
				fmt.Fprintf(&b, "    %s\n", field)
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
