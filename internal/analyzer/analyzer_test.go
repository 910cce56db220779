package analyzer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	an := New(nil)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and drops stopwords",
			input: "Python is a Programming Language",
			want:  []string{"python", "programming", "language"},
		},
		{
			name:  "punctuation splits tokens",
			input: "state-of-the-art indexing, really!",
			want:  []string{"state", "art", "indexing", "really"},
		},
		{
			name:  "short tokens dropped",
			input: "go is ok but gno is not",
			want:  []string{"gno", "not"},
		},
		{
			name:  "digits kept",
			input: "utf8 and base64 encodings in 2024",
			want:  []string{"utf8", "base64", "encodings", "2024"},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
		{
			name:  "only stopwords and short words",
			input: "the and is a of",
			want:  []string{},
		},
		{
			name:  "unicode treated as separator",
			input: "café naïve résumé",
			want:  []string{"caf", "sum"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := an.Tokens(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokensInvariants(t *testing.T) {
	an := New(nil)
	inputs := []string{
		"The quick brown fox, JUMPED over 42 lazy dogs!",
		"but-this... has; odd\tpunctuation\nand lines",
		"MiXeD CaSe WiTh ABBREVIATIONS and IDs like X1Y2Z3",
	}
	for _, input := range inputs {
		for _, token := range an.Tokens(input) {
			if len(token) < 3 {
				t.Errorf("token %q from %q shorter than 3", token, input)
			}
			if an.IsStopword(token) {
				t.Errorf("stopword %q leaked from %q", token, input)
			}
			for _, r := range token {
				if !isIndexable(r) {
					t.Errorf("token %q from %q contains non-indexable rune %q", token, input, r)
				}
			}
		}
	}
}

func TestCustomStopwords(t *testing.T) {
	an := New(map[string]struct{}{"python": {}})
	got := an.Tokens("python programming")
	want := []string{"programming"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
	if an.IsStopword("the") {
		t.Error("custom set should not include default stopwords")
	}
}

func TestDefaultStopwordsCopy(t *testing.T) {
	first := DefaultStopwords()
	delete(first, "the")
	second := DefaultStopwords()
	if _, ok := second["the"]; !ok {
		t.Error("DefaultStopwords must return a fresh copy each call")
	}
}

func TestLoadStopwords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwords.txt")
	content := "Foo\n\n  bar  \nBAZ\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	stopwords, err := LoadStopwords(path)
	if err != nil {
		t.Fatalf("LoadStopwords: %v", err)
	}
	for _, word := range []string{"foo", "bar", "baz"} {
		if _, ok := stopwords[word]; !ok {
			t.Errorf("missing stopword %q", word)
		}
	}
	if len(stopwords) != 3 {
		t.Errorf("got %d stopwords, want 3", len(stopwords))
	}

	if _, err := LoadStopwords(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
