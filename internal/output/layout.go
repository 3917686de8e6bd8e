package output

import (
	"path"
	"path/filepath"
	"strings"

	"bin2ml/internal/corpus"
	"bin2ml/internal/features"
	"bin2ml/internal/graph"
)

// Layout maps artifacts of one unit onto save paths under Dir.
//
//	<dir>/<stem>-<scheme>/<stem>-<function>.json   attributed CFG
//	<dir>/<stem>-<kind>/<function>-<kind>.json     local / one-hop call graph
//	<dir>/<stem>-globalcg.json                     global call graph
//	<dir>/<stem>-<repr>-<granularity>.txt          corpus
//	<dir>/<stem>-walks.jsonl                       random walks
type Layout struct {
	Dir  string
	Stem string
}

// NewLayout derives the stem from the unit path below root.
func NewLayout(dir, root, unitPath string) Layout {
	return Layout{Dir: dir, Stem: Stem(root, unitPath)}
}

// Stem names a unit by its path relative to root, without the JSON
// extension. Extraction tools often name records "<binary>.json" or
// "<binary>_cfg.json"; only the extension is dropped. A unit in a
// subdirectory gets its directories joined with "_" plus a hash of the
// relative path, so a/lib.json, b/lib.json and a_lib.json stay apart.
// The stem does not depend on whether root was given as a relative or an
// absolute path.
func Stem(root, unitPath string) string {
	rel := filepath.Base(unitPath)
	if root != "" {
		if r, err := filepath.Rel(root, unitPath); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	dir, base := path.Split(rel)

	stem := strings.TrimSuffix(base, path.Ext(base))
	if i := strings.Index(base, ".json"); i > 0 {
		stem = base[:i]
	}
	if dir == "" {
		return stem
	}
	return unsafeChars.Replace(strings.TrimSuffix(dir, "/")) + "_" + stem + "-" + shortHash(rel)
}

// CFG returns the path of a function's attributed CFG.
func (l Layout) CFG(s features.Scheme, function string) string {
	return filepath.Join(l.Dir, l.Stem+"-"+s.String(), l.Stem+"-"+FileName(function)+".json")
}

// CallGraph returns the path of a function's local or one-hop call graph.
func (l Layout) CallGraph(k graph.Kind, function string) string {
	return filepath.Join(l.Dir, l.Stem+"-"+string(k), FileName(function)+"-"+string(k)+".json")
}

// GlobalCallGraph returns the path of the unit's global call graph.
func (l Layout) GlobalCallGraph() string {
	return filepath.Join(l.Dir, l.Stem+"-"+string(graph.KindGlobal)+".json")
}

// Corpus returns the path of a corpus file. granularity is "singles",
// "funcstrings" or "walks".
func (l Layout) Corpus(r corpus.Representation, granularity string) string {
	return filepath.Join(l.Dir, l.Stem+"-"+r.String()+"-"+granularity+".txt")
}

// Walks returns the path of the unit's walks file.
func (l Layout) Walks() string {
	return filepath.Join(l.Dir, l.Stem+"-walks.jsonl")
}

// DOT swaps a .json artifact path for its .dot sibling.
func DOT(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, ".json") + ".dot"
}
