// Package output writes bin2ml artifacts to files.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"

	"bin2ml/internal/graph"
)

// WriteGraph writes g as a compact adjacency document, one per file.
func WriteGraph(path string, g *graph.Graph) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteDOT renders g with lattice and writes it next to its JSON document.
func WriteDOT(path string, g *graph.Graph) error {
	return writeFile(path, []byte(graph.DOT(g)))
}

// WriteLines writes one line per entry. Nothing is written for an empty slice.
func WriteLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if err := mkdirFor(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

// WalkRecord is one line of a walks file.
type WalkRecord struct {
	Function string  `json:"function"`
	Walks    [][]int `json:"walks"`
}

// WriteJSONL writes one compact JSON object per line.
func WriteJSONL[T any](path string, recs []T) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range recs {
		if err := enc.Encode(recs[i]); err != nil {
			return fmt.Errorf("output: encode %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path is an existing regular file.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

func writeFile(path string, data []byte) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("output: write %s: %w", path, err)
	}
	return nil
}

func mkdirFor(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := mkdirFor(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return nil
}

// trimName keeps long function names (mangled C++ templates) within file
// name limits: names over 100 characters are cut to 75.
func trimName(name string) string {
	r := []rune(name)
	if len(r) > 100 {
		return string(r[:75])
	}
	return name
}

var unsafeChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_", "\x00", "_",
)

// FileName makes a function name safe for use as a path component. A name
// that had to be trimmed or rewritten gets a hash of the full name appended,
// so distinct functions never share a file.
func FileName(function string) string {
	s := unsafeChars.Replace(trimName(function))
	if s == "" || s == "." || s == ".." {
		s = "_"
	}
	if s != function {
		s += "-" + shortHash(function)
	}
	return s
}

func shortHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}
