package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// NewPythonTokenizer creates a tokenizer for Python source
func NewPythonTokenizer() (*Tokenizer, error) {
	return newTokenizer("python", tree_sitter.NewLanguage(python.Language()), normalizePython)
}

func normalizePython(token Token) string {
	switch token.Type {
	case "identifier":
		return "ID"
	case "integer", "float":
		return "NUM"
	case "string", "string_content", "string_start", "string_end":
		return "STR"
	case "true", "false", "True", "False":
		return "BOOL"
	case "none", "None":
		return "NONE"
	default:
		return token.Value
	}
}
