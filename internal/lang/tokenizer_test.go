package lang

import (
	"testing"
)

func TestPythonTokenizer_NormalizedLines(t *testing.T) {
	tok, err := NewPythonTokenizer()
	if err != nil {
		t.Fatalf("NewPythonTokenizer failed: %v", err)
	}

	lines, err := tok.NormalizedLines([]byte("total = 1\nname = \"bob\"\n"))
	if err != nil {
		t.Fatalf("NormalizedLines failed: %v", err)
	}

	if lines[1] != "ID = NUM" {
		t.Errorf("Expected 'ID = NUM' for line 1, got %q", lines[1])
	}
	if lines[2] != "ID = STR STR STR" {
		t.Errorf("Expected normalized string tokens for line 2, got %q", lines[2])
	}
}

func TestTokenizer_RenameInsensitive(t *testing.T) {
	tok, err := NewPythonTokenizer()
	if err != nil {
		t.Fatalf("NewPythonTokenizer failed: %v", err)
	}

	first, err := tok.NormalizedLines([]byte("result = count + 1\n"))
	if err != nil {
		t.Fatalf("NormalizedLines failed: %v", err)
	}
	second, err := tok.NormalizedLines([]byte("output = total + 2\n"))
	if err != nil {
		t.Fatalf("NormalizedLines failed: %v", err)
	}

	if first[1] != second[1] {
		t.Errorf("Expected renamed code to normalize identically: %q vs %q", first[1], second[1])
	}
}

func TestTokenize_SyntaxErrorRejected(t *testing.T) {
	tok, err := NewPythonTokenizer()
	if err != nil {
		t.Fatalf("NewPythonTokenizer failed: %v", err)
	}

	if _, err := tok.Tokenize([]byte("def broken(:\n    pass\n")); err == nil {
		t.Fatal("Expected error for unparseable source, got nil")
	}
}

func TestTokenize_DropsComments(t *testing.T) {
	tok, err := NewPythonTokenizer()
	if err != nil {
		t.Fatalf("NewPythonTokenizer failed: %v", err)
	}

	tokens, err := tok.Tokenize([]byte("# just a comment\nx = 1\n"))
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	for _, token := range tokens {
		if token.Line == 1 {
			t.Errorf("Expected comment line to produce no tokens, got %+v", token)
		}
	}
}

func TestForPath_ExtensionMapping(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"App.java", "java"},
		{"index.js", "javascript"},
		{"widget.jsx", "javascript"},
		{"server.ts", "typescript"},
		{"script.py", "python"},
		{"", "python"},
		{"Makefile", "python"},
	}

	for _, tc := range cases {
		tok, err := ForPath(tc.path)
		if err != nil {
			t.Fatalf("ForPath(%q) failed: %v", tc.path, err)
		}
		if tok.Language() != tc.want {
			t.Errorf("ForPath(%q): expected %q, got %q", tc.path, tc.want, tok.Language())
		}
	}
}

func TestGoTokenizer_Parses(t *testing.T) {
	tok, err := NewGoTokenizer()
	if err != nil {
		t.Fatalf("NewGoTokenizer failed: %v", err)
	}

	tokens, err := tok.Tokenize([]byte("package main\n\nfunc main() {}\n"))
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if len(tokens) == 0 {
		t.Fatal("Expected tokens from valid Go source")
	}
}
