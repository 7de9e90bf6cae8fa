// Package langhint checks which writing system a piece of generated text uses.
package langhint

import (
	"strings"
	"unicode"
)

// minLetters is the fewest script letters needed before a text counts as written in that script
const minLetters = 20

// scripts in tie-break order; specific scripts win over Latin
var scripts = []struct {
	name  string
	table *unicode.RangeTable
}{
	{"Hiragana", unicode.Hiragana},
	{"Katakana", unicode.Katakana},
	{"Hangul", unicode.Hangul},
	{"Han", unicode.Han},
	{"Arabic", unicode.Arabic},
	{"Hebrew", unicode.Hebrew},
	{"Thai", unicode.Thai},
	{"Greek", unicode.Greek},
	{"Cyrillic", unicode.Cyrillic},
	{"Devanagari", unicode.Devanagari},
	{"Latin", unicode.Latin},
}

// natural language name -> scripts its prose is written in
var languageScripts = map[string][]string{
	"korean":    {"Hangul"},
	"japanese":  {"Hiragana", "Katakana", "Han"},
	"chinese":   {"Han"},
	"arabic":    {"Arabic"},
	"hebrew":    {"Hebrew"},
	"thai":      {"Thai"},
	"greek":     {"Greek"},
	"russian":   {"Cyrillic"},
	"ukrainian": {"Cyrillic"},
	"hindi":     {"Devanagari"},
}

// Counts tallies letters per script name
func Counts(s string) map[string]int {
	out := make(map[string]int)
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		for _, sc := range scripts {
			if unicode.In(r, sc.table) {
				out[sc.name]++
				break
			}
		}
	}
	return out
}

// Predominant returns the script with the most letters, or "" when s has none
func Predominant(s string) string {
	counts := Counts(s)
	best, bestN := "", 0
	for _, sc := range scripts {
		if n := counts[sc.name]; n > bestN {
			best, bestN = sc.name, n
		}
	}
	return best
}

// ScriptsFor returns the scripts a natural language is written in
// ok is false for languages written in Latin or not listed
func ScriptsFor(language string) ([]string, bool) {
	s, ok := languageScripts[strings.ToLower(strings.TrimSpace(language))]
	return s, ok
}

// WrittenIn reports whether text carries enough letters in the scripts of language
// Latin-script and unlisted languages always pass since code itself is mostly Latin
func WrittenIn(text, language string) bool {
	want, ok := ScriptsFor(language)
	if !ok {
		return true
	}
	counts := Counts(text)
	n := 0
	for _, s := range want {
		n += counts[s]
	}
	return n >= minLetters
}
