package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple two words", "Hello World", "hello-world"},
		{"title with numeral", "Two Sum II", "two-sum-ii"},
		{"ampersand spelled out", "Data Structures & Algorithms", "data-structures-and-algorithms"},
		{"punctuation stripped", "What is a closure?", "what-is-a-closure"},
		{"accents transliterated", "Café Résumé", "cafe-resume"},
		{"surrounding spaces", "  Arrays  ", "arrays"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerate_ProducesValidSlugs(t *testing.T) {
	for _, in := range []string{"Hello World", "Big-O notation", "Graphs: BFS & DFS", "Go 1.25"} {
		if got := Generate(in); !Valid(got) {
			t.Errorf("Generate(%q) = %q is not Valid", in, got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"two-sum", true},
		{"arrays", true},
		{"dsa-101", true},
		{"", false},
		{"Two-Sum", false},
		{"-leading", false},
		{"trailing-", false},
		{"has space", false},
		{"../etc", false},
		{"a/b", false},
		{strings.Repeat("a", maxLength+1), false},
	}
	for _, tt := range tests {
		if got := Valid(tt.input); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
