package tokenizer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilterKeyword(t *testing.T) {
	f := NewFilter([]string{"the", "A", " and "})
	tests := []struct {
		word   string
		want   string
		wantOK bool
	}{
		{"Cat", "cat", true},
		{"sat.", "sat", true},
		{"cat!", "cat", true},
		{"word!!", "word", true},
		{"word?!?!", "word", true},
		{"Distance.,;:", "distance", true},
		{"the", "", false},
		{"The.", "", false},
		{"a", "", false},
		{"and", "", false},
		{"hello-world", "", false},
		{"it's", "", false},
		{"abc1", "", false},
		{"(paren", "", false},
		{"end.!x", "", false},
		{"!!!", "", false},
		{"", "", false},
		{"Über", "über", true},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, ok := f.Keyword(tt.word)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Keyword(%q) = (%q, %v), want (%q, %v)", tt.word, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFilterNoise(t *testing.T) {
	f := NewFilter([]string{"The", "", "of"})
	if f.Len() != 2 {
		t.Errorf("Len = %d, want 2", f.Len())
	}
	if !f.IsNoise("THE") {
		t.Error("IsNoise should be case-insensitive")
	}
	if f.IsNoise("cat") {
		t.Error("cat is not a noise word")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("Dog?!"); got != "dog" {
		t.Errorf("Normalize = %q, want dog", got)
	}
	if got := Normalize("e.g."); got != "e.g" {
		t.Errorf("Normalize only strips trailing punctuation, got %q", got)
	}
}

func TestReadNoiseWords(t *testing.T) {
	got, err := ReadNoiseWords(strings.NewReader("a\nan\n  the\n\nof and\n"))
	if err != nil {
		t.Fatalf("ReadNoiseWords: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "an", "the", "of", "and"}, got); diff != "" {
		t.Errorf("ReadNoiseWords mismatch (-want +got):\n%s", diff)
	}
}
