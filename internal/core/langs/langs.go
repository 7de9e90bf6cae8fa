// Package langs classifies source files into programming languages by extension
package langs

import (
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"

	perr "codecorpus/internal/platform/errors"
)

// defaultTable lists the recognised languages and the extensions each one owns
// ".R" and ".r" collapse to one key after lowercasing
var defaultTable = map[string][]string{
	"python":     {".py"},
	"javascript": {".js", ".jsx"},
	"typescript": {".ts", ".tsx"},
	"java":       {".java"},
	"c":          {".c", ".h"},
	"cpp":        {".cpp", ".hpp", ".cc", ".hh", ".cxx", ".hxx"},
	"go":         {".go"},
	"rust":       {".rs"},
	"ruby":       {".rb"},
	"php":        {".php"},
	"swift":      {".swift"},
	"kotlin":     {".kt", ".kts"},
	"scala":      {".scala"},
	"r":          {".r", ".R"},
	"shell":      {".sh", ".bash"},
}

// Table is an immutable language to extension mapping
// the zero value classifies nothing; build one with New or Default
type Table struct {
	byExt  map[string]string
	byLang map[string][]string
	names  []string
}

// New builds a Table from a language -> extensions literal
// panics when two languages claim the same (lowercased) extension
func New(src map[string][]string) Table {
	t := Table{
		byExt:  make(map[string]string),
		byLang: make(map[string][]string, len(src)),
	}
	for lang, exts := range src {
		seen := make(map[string]bool, len(exts))
		for _, e := range exts {
			e = strings.ToLower(e)
			if owner, ok := t.byExt[e]; ok && owner != lang {
				panic(fmt.Sprintf("langs: extension %s claimed by %s and %s", e, owner, lang))
			}
			t.byExt[e] = lang
			if !seen[e] {
				seen[e] = true
				t.byLang[lang] = append(t.byLang[lang], e)
			}
		}
		t.names = append(t.names, lang)
	}
	sort.Strings(t.names)
	return t
}

var std = New(defaultTable)

// Default returns the built-in fifteen language table
func Default() Table { return std }

// Classify returns the language owning the lowercased extension of p
func (t Table) Classify(p string) (string, bool) {
	ext := path.Ext(strings.ToLower(p))
	if ext == "" {
		return "", false
	}
	lang, ok := t.byExt[ext]
	return lang, ok
}

// Has reports whether name is a known language
func (t Table) Has(name string) bool {
	_, ok := t.byLang[name]
	return ok
}

// Names returns the known language names sorted
func (t Table) Names() []string { return slices.Clone(t.names) }

// Extensions returns the lowercased extensions of the named languages in the order given
func (t Table) Extensions(names ...string) []string {
	var out []string
	for _, n := range names {
		out = append(out, t.byLang[n]...)
	}
	return out
}

// Validate fails with an invalid argument error listing every unknown name and the allowed set
func (t Table) Validate(names []string) error {
	if len(names) == 0 {
		return perr.WithField(perr.InvalidArgf("no languages requested; allowed: %s", strings.Join(t.names, ", ")), "languages")
	}
	var unknown []string
	for _, n := range names {
		if !t.Has(n) {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return perr.WithField(
		perr.InvalidArgf("unsupported languages: %s; allowed: %s",
			strings.Join(unknown, ", "), strings.Join(t.names, ", ")),
		"languages",
	)
}
