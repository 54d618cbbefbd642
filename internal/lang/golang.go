package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// NewGoTokenizer creates a tokenizer for Go source
func NewGoTokenizer() (*Tokenizer, error) {
	return newTokenizer("go", tree_sitter.NewLanguage(golang.Language()), normalizeGo)
}

func normalizeGo(token Token) string {
	switch token.Type {
	case "identifier", "field_identifier", "package_identifier", "type_identifier":
		return "ID"
	case "int_literal", "float_literal", "imaginary_literal":
		return "NUM"
	case "raw_string_literal", "interpreted_string_literal":
		return "STR"
	case "rune_literal":
		return "CHAR"
	case "true", "false":
		return "BOOL"
	case "nil":
		return "NIL"
	default:
		return token.Value
	}
}
