// Package tokenizer turns raw words into index keywords. A keyword is a word
// with its trailing punctuation removed, lower-cased, made only of letters,
// and not one of the configured noise words.
package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// punctuation is the closed set of characters stripped from the end of a
// word. Nothing else counts as punctuation.
const punctuation = ".,?:;!"

// Filter decides which words are keywords.
type Filter struct {
	noise map[string]struct{}
}

// NewFilter builds a Filter whose noise-word set is noise, lower-cased.
func NewFilter(noise []string) *Filter {
	f := &Filter{noise: make(map[string]struct{}, len(noise))}
	for _, w := range noise {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.noise[w] = struct{}{}
		}
	}
	return f
}

// Keyword returns the keyword form of word and true, or "" and false when
// word is not a keyword.
func (f *Filter) Keyword(word string) (string, bool) {
	kw := Normalize(word)
	if kw == "" {
		return "", false
	}
	for _, r := range kw {
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	if f.IsNoise(kw) {
		return "", false
	}
	return kw, true
}

// IsNoise reports whether word is in the noise-word set.
func (f *Filter) IsNoise(word string) bool {
	_, ok := f.noise[strings.ToLower(word)]
	return ok
}

func (f *Filter) Len() int {
	return len(f.noise)
}

// Normalize lower-cases word and strips every trailing punctuation
// character. It does not reject anything.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimRight(word, punctuation))
}

// Words calls fn for every whitespace-separated word read from r.
func Words(r io.Reader, fn func(word string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		fn(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scanning words: %w", err)
	}
	return nil
}

// ReadNoiseWords reads whitespace-separated noise words from r.
func ReadNoiseWords(r io.Reader) ([]string, error) {
	var words []string
	if err := Words(r, func(w string) { words = append(words, w) }); err != nil {
		return nil, err
	}
	return words, nil
}
