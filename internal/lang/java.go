package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// NewJavaTokenizer creates a tokenizer for Java source
func NewJavaTokenizer() (*Tokenizer, error) {
	return newTokenizer("java", tree_sitter.NewLanguage(java.Language()), normalizeJava)
}

func normalizeJava(token Token) string {
	switch token.Type {
	case "identifier", "type_identifier":
		return "ID"
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "decimal_floating_point_literal", "hex_floating_point_literal":
		return "NUM"
	case "string_literal", "string_fragment", "character_literal":
		return "STR"
	case "true", "false":
		return "BOOL"
	case "null":
		return "NULL"
	default:
		return token.Value
	}
}
